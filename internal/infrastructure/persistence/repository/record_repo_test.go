package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/pkg/database"
)

func newTestRepo(t *testing.T) *RecordRepository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run(Migrations()))
	return NewRecordRepository(db, zap.NewNop())
}

func sampleRecord(id string, uploadedAt time.Time) *entity.InvoiceRecord {
	processedAt := uploadedAt.Add(5 * time.Second)
	return &entity.InvoiceRecord{
		ID:          id,
		FileName:    "invoice.pdf",
		MediaType:   "application/pdf",
		FileSize:    2048,
		PreviewPath: "previews/" + id + ".pdf",
		Status:      entity.StatusReviewPending,
		ExtractedData: &entity.ExtractedInvoiceData{
			VendorName:  entity.String("Acme Corp"),
			TotalAmount: entity.Float(275),
			LineItems:   []entity.LineItem{{ID: "li-1", Total: entity.Float(275)}},
		},
		ValidationErrors: []entity.ValidationError{
			{Field: entity.FieldSubTotal, Message: "Calculated subtotal from line items (275.00) does not match stated subtotal (250.00)."},
		},
		UploadedAt:  uploadedAt,
		ProcessedAt: &processedAt,
	}
}

func TestRecordRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := sampleRecord("rec-old", time.Now().Add(-time.Hour))
	newer := sampleRecord("rec-new", time.Now())
	require.NoError(t, repo.ReplaceAll(ctx, []*entity.InvoiceRecord{older, newer}))

	loaded, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Newest first
	assert.Equal(t, "rec-new", loaded[0].ID)
	assert.Equal(t, "rec-old", loaded[1].ID)

	got := loaded[0]
	assert.Equal(t, entity.StatusReviewPending, got.Status)
	assert.Equal(t, "Acme Corp", *got.ExtractedData.VendorName)
	require.Len(t, got.ValidationErrors, 1)
	assert.Equal(t, entity.FieldSubTotal, got.ValidationErrors[0].Field)
	assert.True(t, got.UploadedAt.Equal(newer.UploadedAt))
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, got.ProcessedAt.Equal(*newer.ProcessedAt))

	// File bytes are not persisted, so the record comes back with a placeholder
	_, isPlaceholder := got.File.(*entity.PlaceholderFile)
	assert.True(t, isPlaceholder)
	assert.Equal(t, int64(0), got.File.Size())
}

func TestRecordRepository_NilDataStaysNil(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &entity.InvoiceRecord{
		ID:         "rec-err",
		FileName:   "broken.png",
		MediaType:  "image/png",
		FileSize:   10,
		Status:     entity.StatusError,
		ErrorMessage: "File not found or empty for processing.",
		UploadedAt: time.Now(),
	}
	require.NoError(t, repo.ReplaceAll(ctx, []*entity.InvoiceRecord{rec}))

	loaded, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Nil(t, loaded[0].ExtractedData)
	assert.Nil(t, loaded[0].ValidationErrors)
	assert.Nil(t, loaded[0].ProcessedAt)
	assert.Equal(t, "File not found or empty for processing.", loaded[0].ErrorMessage)
}

func TestRecordRepository_UpsertAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord("rec-1", time.Now())
	require.NoError(t, repo.Upsert(ctx, rec))

	rec.Status = entity.StatusCompleted
	rec.ValidationErrors = nil
	require.NoError(t, repo.Upsert(ctx, rec))

	loaded, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, entity.StatusCompleted, loaded[0].Status)

	require.NoError(t, repo.Delete(ctx, "rec-1"))
	require.NoError(t, repo.Delete(ctx, "rec-1")) // idempotent

	loaded, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
