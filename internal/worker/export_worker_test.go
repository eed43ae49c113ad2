package worker

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"merchquote/internal/dto"
	"merchquote/internal/infra"
	"merchquote/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ExportRepository ───────────────────────────────────────────────

type fakeExportRepo struct {
	records map[uuid.UUID]*model.ExportRecord
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{records: make(map[uuid.UUID]*model.ExportRecord)}
}

func (r *fakeExportRepo) Create(_ context.Context, e *model.ExportRecord) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.records[e.ID] = e
	return nil
}

func (r *fakeExportRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ExportRecord, error) {
	e, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeExportRepo) List(_ context.Context, _ uuid.UUID, _ dto.ExportFilter) ([]model.ExportRecord, int64, error) {
	return nil, 0, nil
}

func (r *fakeExportRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	r.records[id].Status = model.ExportRunning
	return nil
}

func (r *fakeExportRepo) MarkCompleted(_ context.Context, id uuid.UUID, filePath string) error {
	now := time.Now()
	e := r.records[id]
	e.Status = model.ExportCompleted
	e.FilePath = filePath
	e.CompletedAt = &now
	return nil
}

func (r *fakeExportRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	e := r.records[id]
	e.Status = model.ExportFailed
	e.LastError = &reason
	e.RetryCount++
	return nil
}

func (r *fakeExportRepo) SetLastError(_ context.Context, id uuid.UUID, reason string) error {
	r.records[id].LastError = &reason
	return nil
}

func (r *fakeExportRepo) StalePending(_ context.Context, olderThan time.Time, limit int) ([]model.ExportRecord, error) {
	var out []model.ExportRecord
	for _, e := range r.records {
		if (e.Status == model.ExportPending || e.Status == model.ExportFailed) &&
			e.UpdatedAt.Before(olderThan) && e.RetryCount <= model.MaxExportRetries {
			out = append(out, *e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func renderData(t *testing.T, number string) []byte {
	t.Helper()
	doc := infra.QuoteDocument{
		Number:      number,
		Date:        "2026-09-01",
		Customer:    "Acme Inc",
		Issuer:      infra.DocumentIssuer{CompanyName: "Merch Co"},
		Lines:       []infra.DocumentLine{{Name: "Hoodie", UnitPrice: 22000, Quantity: 1, LineTotal: 22000}},
		VATIncluded: true,
		Subtotal:    22000,
		GrandTotal:  22000,
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func exportJob(t *testing.T, id uuid.UUID) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ExportJobPayload{ExportID: id.String()})
	require.NoError(t, err)
	return raw
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestDispatcherEnqueueExport(t *testing.T) {
	rdb := testRedis(t)
	d := NewDispatcher(rdb)

	require.NoError(t, d.EnqueueExport(context.Background(), ExportJobPayload{ExportID: "abc"}))

	raw, err := rdb.RPop(context.Background(), QueueExport).Result()
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "export", job.Type)

	var payload ExportJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "abc", payload.ExportID)
}

func TestExportWorkerRendersAndEnqueuesEmail(t *testing.T) {
	rdb := testRedis(t)
	repo := newFakeExportRepo()
	dir := t.TempDir()
	w := NewExportWorker(repo, NewDispatcher(rdb), dir)

	email := "ops@acme.test"
	record := &model.ExportRecord{
		OperatorID: uuid.New(),
		Format:     "pdf",
		Letterhead: "primary",
		Status:     model.ExportPending,
		RenderData: renderData(t, "D20260901-test"),
		EmailTo:    &email,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	require.NoError(t, w.Process(context.Background(), exportJob(t, record.ID)))

	assert.Equal(t, model.ExportCompleted, record.Status)
	require.NotEmpty(t, record.FilePath)
	_, err := os.Stat(record.FilePath)
	require.NoError(t, err)

	// Completed export with a recipient queues the email job
	n, err := rdb.LLen(context.Background(), QueueEmail).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestExportWorkerSkipsCompletedRecord(t *testing.T) {
	rdb := testRedis(t)
	repo := newFakeExportRepo()
	w := NewExportWorker(repo, NewDispatcher(rdb), t.TempDir())

	record := &model.ExportRecord{
		Format:     "pdf",
		Status:     model.ExportCompleted,
		FilePath:   "/already/done.pdf",
		RenderData: renderData(t, "D20260901-dup"),
	}
	require.NoError(t, repo.Create(context.Background(), record))

	require.NoError(t, w.Process(context.Background(), exportJob(t, record.ID)))
	assert.Equal(t, "/already/done.pdf", record.FilePath)
}

func TestExportWorkerMarksFailedOnUnknownFormat(t *testing.T) {
	rdb := testRedis(t)
	repo := newFakeExportRepo()
	w := NewExportWorker(repo, NewDispatcher(rdb), t.TempDir())

	record := &model.ExportRecord{
		Format:     "docx",
		Status:     model.ExportPending,
		RenderData: renderData(t, "D20260901-bad"),
	}
	require.NoError(t, repo.Create(context.Background(), record))

	err := w.Process(context.Background(), exportJob(t, record.ID))
	require.Error(t, err)
	assert.Equal(t, model.ExportFailed, record.Status)
	assert.Equal(t, 1, record.RetryCount)
	require.NotNil(t, record.LastError)
}

func TestRetryCronReEnqueuesAndDLQsAtCeiling(t *testing.T) {
	rdb := testRedis(t)
	repo := newFakeExportRepo()
	cfg := RetryCronConfig{ExportRepo: repo, Dispatcher: NewDispatcher(rdb), RDB: rdb}

	stale := time.Now().Add(-10 * time.Minute)
	retryable := &model.ExportRecord{Format: "pdf", Status: model.ExportFailed, RetryCount: 1}
	exhausted := &model.ExportRecord{Format: "pdf", Status: model.ExportFailed, RetryCount: model.MaxExportRetries}
	require.NoError(t, repo.Create(context.Background(), retryable))
	require.NoError(t, repo.Create(context.Background(), exhausted))
	retryable.UpdatedAt = stale
	exhausted.UpdatedAt = stale

	processRetries(context.Background(), cfg)

	n, err := rdb.LLen(context.Background(), QueueExport).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the retryable record is re-enqueued")

	dlqLen, err := DLQLength(context.Background(), rdb, QueueExport)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dlqLen)

	// The dead entry is traceable back to its export record
	raw, err := rdb.RPop(context.Background(), DLQPrefix+QueueExport).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, exhausted.ID.String(), entry.ExportID)
	assert.Equal(t, "export", entry.JobType)
	assert.NotEmpty(t, entry.FailedAt)

	// The exhausted record's count moved past the ceiling, so the next stale
	// query no longer returns it
	assert.Equal(t, model.MaxExportRetries+1, exhausted.RetryCount)
}
