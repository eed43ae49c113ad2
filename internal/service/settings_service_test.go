package service

import (
	"context"
	"testing"

	"merchquote/internal/dto"
	"merchquote/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory SettingsRepository ─────────────────────────────────────────────

type fakeSettingsRepo struct {
	letterheads map[string]*model.Letterhead
	settings    map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		letterheads: make(map[string]*model.Letterhead),
		settings:    make(map[string]string),
	}
}

func (r *fakeSettingsRepo) GetLetterhead(_ context.Context, key string) (*model.Letterhead, error) {
	lh, ok := r.letterheads[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lh, nil
}

func (r *fakeSettingsRepo) UpsertLetterhead(_ context.Context, lh *model.Letterhead) error {
	r.letterheads[lh.Key] = lh
	return nil
}

func (r *fakeSettingsRepo) GetSetting(_ context.Context, key string) (*model.Setting, error) {
	v, ok := r.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Setting{Key: key, Value: v}, nil
}

func (r *fakeSettingsRepo) UpsertSetting(_ context.Context, key, value string) error {
	r.settings[key] = value
	return nil
}

func (r *fakeSettingsRepo) AllSettings(_ context.Context) ([]model.Setting, error) {
	var all []model.Setting
	for k, v := range r.settings {
		all = append(all, model.Setting{Key: k, Value: v})
	}
	return all, nil
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestGetDefaultsUnconfigured(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())

	resp, err := svc.GetDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.DiscountRate)
	assert.Equal(t, "none", resp.Truncation)
	assert.True(t, resp.VATIncluded)
	assert.Equal(t, "primary", resp.Letterhead)
}

func TestUpdateDefaultsOverlaysStoredValues(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())

	rate := 5
	trunc := "100"
	excluded := false
	resp, err := svc.UpdateDefaults(context.Background(), dto.UpdateDefaultsRequest{
		DiscountRate: &rate,
		Truncation:   &trunc,
		VATIncluded:  &excluded,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.DiscountRate)
	assert.Equal(t, "100", resp.Truncation)
	assert.False(t, resp.VATIncluded)
	assert.Equal(t, "primary", resp.Letterhead, "untouched key keeps its default")
}

func TestLoadLetterheadUnconfiguredIsBlank(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())

	lh, err := svc.LoadLetterhead(context.Background(), "secondary")
	require.NoError(t, err)
	assert.Equal(t, "secondary", lh.Key)
	assert.Empty(t, lh.CompanyName)
}

func TestUpdateAndGetLetterhead(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())

	_, err := svc.UpdateLetterhead(context.Background(), "primary", dto.UpdateLetterheadRequest{
		CompanyName:  "Merch Co",
		Registration: "123-45-67890",
		BankAccount:  "Bank 000-111-222",
	})
	require.NoError(t, err)

	resp, err := svc.GetLetterhead(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, "Merch Co", resp.CompanyName)
	assert.Equal(t, "123-45-67890", resp.Registration)
}
