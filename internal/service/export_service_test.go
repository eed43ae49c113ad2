package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/infra"
	"merchquote/internal/model"
	"merchquote/internal/session"
	"merchquote/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ExportRepository ───────────────────────────────────────────────

type memExportRepo struct {
	records map[uuid.UUID]*model.ExportRecord
}

func newMemExportRepo() *memExportRepo {
	return &memExportRepo{records: make(map[uuid.UUID]*model.ExportRecord)}
}

func (r *memExportRepo) Create(_ context.Context, e *model.ExportRecord) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	// Stored copy, like a real row: later writes to the caller's struct
	// don't reach the store unless a repo method persists them
	stored := *e
	r.records[e.ID] = &stored
	return nil
}

func (r *memExportRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ExportRecord, error) {
	e, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *memExportRepo) List(_ context.Context, operatorID uuid.UUID, _ dto.ExportFilter) ([]model.ExportRecord, int64, error) {
	var out []model.ExportRecord
	for _, e := range r.records {
		if e.OperatorID == operatorID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memExportRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	r.records[id].Status = model.ExportRunning
	return nil
}

func (r *memExportRepo) MarkCompleted(_ context.Context, id uuid.UUID, filePath string) error {
	r.records[id].Status = model.ExportCompleted
	r.records[id].FilePath = filePath
	return nil
}

func (r *memExportRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	r.records[id].Status = model.ExportFailed
	r.records[id].LastError = &reason
	r.records[id].RetryCount++
	return nil
}

func (r *memExportRepo) SetLastError(_ context.Context, id uuid.UUID, reason string) error {
	r.records[id].LastError = &reason
	return nil
}

func (r *memExportRepo) StalePending(_ context.Context, _ time.Time, _ int) ([]model.ExportRecord, error) {
	return nil, nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

type exportFixture struct {
	exports  *memExportRepo
	registry *session.Registry
	quotes   QuoteService
	svc      ExportService
	rdb      *redis.Client
	mr       *miniredis.Miniredis
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	registry := session.NewRegistry(time.Hour)
	quotes := NewQuoteService(registry, hoodieFetcher(), nil)
	exports := newMemExportRepo()
	settings := NewSettingsService(newFakeSettingsRepo())
	svc := NewExportService(registry, settings, exports, worker.NewDispatcher(rdb))

	return &exportFixture{
		exports:  exports,
		registry: registry,
		quotes:   quotes,
		svc:      svc,
		rdb:      rdb,
		mr:       mr,
	}
}

func (f *exportFixture) committedSession(t *testing.T) string {
	t.Helper()
	sess := f.quotes.CreateSession()
	_, err := f.quotes.CommitLine(context.Background(), sess.SessionID, dto.CommitLineRequest{
		ProductID: 42,
		Selected:  map[string]string{"Size": "XL", "Color": "Black"},
		Quantity:  1,
	})
	require.NoError(t, err)
	return sess.SessionID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestEnqueueFreezesRenderPayload(t *testing.T) {
	f := newExportFixture(t)
	sid := f.committedSession(t)
	operatorID := uuid.New()

	resp, err := f.svc.Enqueue(context.Background(), operatorID, dto.ExportRequest{
		SessionID: sid,
		Format:    "pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExportPending, resp.Status)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	record := f.exports.records[id]
	require.NotNil(t, record)

	var doc infra.QuoteDocument
	require.NoError(t, json.Unmarshal(record.RenderData, &doc))
	assert.Equal(t, int64(22000), doc.Subtotal)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "Hoodie", doc.Lines[0].Name)
	assert.True(t, strings.HasPrefix(doc.Number, "D"), "unsaved sessions get a draft number")

	// The job landed on the export queue
	n, err := f.rdb.LLen(context.Background(), worker.QueueExport).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnqueueLaterEditsDoNotChangePayload(t *testing.T) {
	f := newExportFixture(t)
	sid := f.committedSession(t)

	resp, err := f.svc.Enqueue(context.Background(), uuid.New(), dto.ExportRequest{SessionID: sid, Format: "xlsx"})
	require.NoError(t, err)

	// Edit the session after the export was requested
	rate := 50
	_, err = f.quotes.UpdateSettings(sid, dto.QuoteSettingsRequest{DiscountRate: &rate})
	require.NoError(t, err)

	id, _ := uuid.Parse(resp.ID)
	var doc infra.QuoteDocument
	require.NoError(t, json.Unmarshal(f.exports.records[id].RenderData, &doc))
	assert.Zero(t, doc.DiscountAmount, "frozen payload keeps the state at enqueue time")
}

func TestGetScopedToRequestingOperator(t *testing.T) {
	f := newExportFixture(t)
	sid := f.committedSession(t)
	owner := uuid.New()

	created, err := f.svc.Enqueue(context.Background(), owner, dto.ExportRequest{SessionID: sid, Format: "pdf"})
	require.NoError(t, err)
	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.svc.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "another operator's export reads as absent")
}

func TestEnqueueDispatchFailureKeepsDiagnostic(t *testing.T) {
	f := newExportFixture(t)
	sid := f.committedSession(t)

	// Queue backend down: the record is created but the push fails
	f.mr.Close()

	resp, err := f.svc.Enqueue(context.Background(), uuid.New(), dto.ExportRequest{SessionID: sid, Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, model.ExportPending, resp.Status, "record stays pending for the retry cron")
	require.NotNil(t, resp.LastError)

	id, _ := uuid.Parse(resp.ID)
	record := f.exports.records[id]
	require.NotNil(t, record.LastError, "dispatch failure reason is persisted")
}

func TestPreviewTracksLiveSession(t *testing.T) {
	f := newExportFixture(t)
	sid := f.committedSession(t)

	doc, err := f.svc.Preview(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, int64(22000), doc.Subtotal)
	assert.True(t, strings.HasPrefix(doc.Number, "D"))

	// Unlike an enqueued export, a second preview sees the edit
	rate := 10
	_, err = f.quotes.UpdateSettings(sid, dto.QuoteSettingsRequest{DiscountRate: &rate})
	require.NoError(t, err)

	doc, err = f.svc.Preview(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, int64(2200), doc.DiscountAmount)
}

func TestPreviewUnknownSession(t *testing.T) {
	f := newExportFixture(t)

	_, err := f.svc.Preview(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEnqueueEmptySession(t *testing.T) {
	f := newExportFixture(t)
	sess := f.quotes.CreateSession()

	_, err := f.svc.Enqueue(context.Background(), uuid.New(), dto.ExportRequest{SessionID: sess.SessionID, Format: "pdf"})
	assert.ErrorIs(t, err, ErrEmptyQuote)
}

func TestEnqueueUnknownSession(t *testing.T) {
	f := newExportFixture(t)

	_, err := f.svc.Enqueue(context.Background(), uuid.New(), dto.ExportRequest{SessionID: uuid.NewString(), Format: "pdf"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
