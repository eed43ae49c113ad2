package service

import (
	"context"
	"errors"
	"testing"

	"merchquote/internal/config"
	"merchquote/internal/dto"
	"merchquote/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory OperatorRepository ─────────────────────────────────────────────

type fakeOperatorRepo struct {
	operators map[uuid.UUID]*model.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{operators: make(map[uuid.UUID]*model.Operator)}
}

func (r *fakeOperatorRepo) Create(_ context.Context, op *model.Operator) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	r.operators[op.ID] = op
	return nil
}

func (r *fakeOperatorRepo) FindByUsername(_ context.Context, username string) (*model.Operator, error) {
	for _, op := range r.operators {
		if op.Username == username && op.Active {
			return op, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeOperatorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Operator, error) {
	op, ok := r.operators[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return op, nil
}

func (r *fakeOperatorRepo) List(_ context.Context) ([]model.Operator, error) {
	var out []model.Operator
	for _, op := range r.operators {
		if op.Active {
			out = append(out, *op)
		}
	}
	return out, nil
}

func (r *fakeOperatorRepo) Update(_ context.Context, op *model.Operator) error {
	r.operators[op.ID] = op
	return nil
}

func (r *fakeOperatorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if op, ok := r.operators[id]; ok {
		op.Active = false
	}
	return nil
}

func (r *fakeOperatorRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if op, ok := r.operators[id]; ok {
		op.Active = true
	}
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedOperator(t *testing.T, repo *fakeOperatorRepo, username, password, role string) *model.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	op := &model.Operator{
		Username:     username,
		DisplayName:  "Test Operator",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), op))
	return op
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestLoginIssuesTokens(t *testing.T) {
	repo := newFakeOperatorRepo()
	seedOperator(t, repo, "jihye", "secret1234", "operator")
	svc := NewAuthService(repo, authTestConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jihye", Password: "secret1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "jihye", resp.User.Username)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeOperatorRepo()
	seedOperator(t, repo, "jihye", "secret1234", "operator")
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jihye", Password: "nope"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeOperatorRepo(), authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "x"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshRotatesTokens(t *testing.T) {
	repo := newFakeOperatorRepo()
	seedOperator(t, repo, "jihye", "secret1234", "admin")
	svc := NewAuthService(repo, authTestConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jihye", Password: "secret1234"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "jihye", refreshed.User.Username)
}

func TestRefreshRejectsDeactivatedOperator(t *testing.T) {
	repo := newFakeOperatorRepo()
	op := seedOperator(t, repo, "jihye", "secret1234", "operator")
	svc := NewAuthService(repo, authTestConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jihye", Password: "secret1234"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateOperator(context.Background(), op.ID))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.EqualError(t, err, "operator not found or inactive")
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := NewAuthService(newFakeOperatorRepo(), authTestConfig())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestCreateAndUpdateOperator(t *testing.T) {
	repo := newFakeOperatorRepo()
	svc := NewAuthService(repo, authTestConfig())

	created, err := svc.CreateOperator(context.Background(), dto.CreateOperatorRequest{
		Username:    "minsu",
		DisplayName: "Minsu",
		Password:    "welcome12",
		Role:        "operator",
	})
	require.NoError(t, err)
	assert.Equal(t, "operator", created.Role)
	assert.True(t, created.Active)

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateOperator(context.Background(), id, dto.UpdateOperatorRequest{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, "Minsu", updated.DisplayName)
}
