package invoice

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

type fakeExtractor struct {
	fn func(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error) {
	return f.fn(ctx, file)
}

type fakePreviews struct {
	mu      sync.Mutex
	writes  []string
	removes []string
}

func (p *fakePreviews) WritePreview(_ context.Context, recordID string, _ *entity.LiveFile) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path := "previews/" + recordID
	p.writes = append(p.writes, path)
	return path, nil
}

func (p *fakePreviews) RemovePreview(_ context.Context, previewPath string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removes = append(p.removes, previewPath)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	statuses []entity.Status
}

func (n *fakeNotifier) RecordNeedsAttention(_ context.Context, rec *entity.InvoiceRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, rec.Status)
	return nil
}

func newTestManager(extract func(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error)) *Manager {
	processor := NewProcessor(&fakeExtractor{fn: extract}, zap.NewNop())
	return NewManager(processor, nil, nil, zap.NewNop())
}

func pdfUpload(name string) *entity.LiveFile {
	return &entity.LiveFile{
		FileName:    name,
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 test document"),
	}
}

func validData() *entity.ExtractedInvoiceData {
	return &entity.ExtractedInvoiceData{
		VendorName:    entity.String("Acme Corp"),
		InvoiceNumber: entity.String("INV-1"),
		InvoiceDate:   entity.String("2024-10-26"),
		TotalAmount:   entity.Float(100),
	}
}

func mismatchedData() *entity.ExtractedInvoiceData {
	d := validData()
	d.LineItems = []entity.LineItem{{ID: "li-1", Total: entity.Float(100)}}
	d.SubTotal = entity.Float(90)
	d.TotalAmount = entity.Float(90)
	return d
}

func TestManager_IntakeRejectsOversizeAndUnsupported(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return validData(), nil
	})

	huge := &entity.LiveFile{
		FileName:    "huge.pdf",
		ContentType: "application/pdf",
		Data:        bytes.Repeat([]byte("x"), entity.MaxFileSizeBytes+1),
	}
	text := &entity.LiveFile{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("hello"),
	}

	accepted, rejections := m.Intake(context.Background(), []*entity.LiveFile{huge, text, pdfUpload("ok.pdf")})

	require.Len(t, accepted, 1)
	assert.Equal(t, "ok.pdf", accepted[0].FileName)

	require.Len(t, rejections, 2)
	assert.Equal(t, "File huge.pdf is too large (max 10MB).", rejections[0].Reason)
	assert.Equal(t,
		"File notes.txt has an unsupported type. Supported: image/jpeg, image/png, application/pdf.",
		rejections[1].Reason)
}

func TestManager_EmptyFileFailsPrecondition(t *testing.T) {
	extractorCalled := false
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		extractorCalled = true
		return validData(), nil
	})

	accepted, rejections := m.Intake(context.Background(), []*entity.LiveFile{
		{FileName: "empty.pdf", ContentType: "application/pdf"},
	})

	require.Empty(t, rejections)
	require.Len(t, accepted, 1)
	assert.False(t, extractorCalled)
	assert.Equal(t, entity.StatusError, accepted[0].Status)
	assert.Equal(t, "File not found or empty for processing.", accepted[0].ErrorMessage)
	require.NotNil(t, accepted[0].ProcessedAt)
}

func TestManager_ExtractionFailureSurfacesMessage(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return nil, &ExtractionError{Message: "The AI model did not return valid JSON"}
	})

	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})

	require.Len(t, accepted, 1)
	assert.Equal(t, entity.StatusError, accepted[0].Status)
	assert.Equal(t, "The AI model did not return valid JSON", accepted[0].ErrorMessage)
}

func TestManager_ConsistentDataCompletes(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return validData(), nil
	})

	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})

	require.Len(t, accepted, 1)
	rec := accepted[0]
	assert.Equal(t, entity.StatusCompleted, rec.Status)
	assert.Empty(t, rec.ValidationErrors)
	assert.Empty(t, rec.ErrorMessage)
	require.NotNil(t, rec.ExtractedData)
	assert.Equal(t, "Acme Corp", *rec.ExtractedData.VendorName)
	require.NotNil(t, rec.ProcessedAt)
	assert.False(t, m.IsProcessing(rec.ID))
}

func TestManager_InconsistentDataNeedsReview(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return mismatchedData(), nil
	})

	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})

	require.Len(t, accepted, 1)
	rec := accepted[0]
	assert.Equal(t, entity.StatusReviewPending, rec.Status)
	require.Len(t, rec.ValidationErrors, 1)
	assert.Equal(t, entity.FieldSubTotal, rec.ValidationErrors[0].Field)
}

func TestManager_BatchProcessedSequentiallyInOrder(t *testing.T) {
	var order []string
	var m *Manager
	m = newTestManager(func(_ context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		order = append(order, file.Name())
		if file.Name() == "b.pdf" {
			// The first record must already be settled before the second
			// extraction starts.
			for _, rec := range m.Records() {
				if rec.FileName == "a.pdf" {
					assert.Equal(t, entity.StatusCompleted, rec.Status)
				}
			}
		}
		return validData(), nil
	})

	m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf"), pdfUpload("b.pdf")})

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, order)
}

func TestManager_DeleteDuringPipelineDropsResult(t *testing.T) {
	var m *Manager
	var deletedID string
	m = newTestManager(func(ctx context.Context, _ entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		// Simulate the user deleting the record while extraction is running.
		recs := m.Records()
		deletedID = recs[0].ID
		m.Delete(ctx, deletedID)
		return validData(), nil
	})

	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})

	assert.Empty(t, accepted)
	assert.Nil(t, m.Review(deletedID), "deleted record must not be resurrected")
	assert.Empty(t, m.Records())
}

func TestManager_SaveCorrectedDataCompletes(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return mismatchedData(), nil
	})
	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})
	rec := accepted[0]
	require.Equal(t, entity.StatusReviewPending, rec.Status)

	corrected := rec.ExtractedData.Clone()
	corrected.SubTotal = entity.Float(100)
	corrected.TotalAmount = entity.Float(100)

	violations, err := m.Save(context.Background(), rec.ID, corrected)

	require.NoError(t, err)
	assert.Empty(t, violations)

	saved := m.Review(rec.ID)
	assert.Equal(t, entity.StatusCompleted, saved.Status)
	assert.Empty(t, saved.ValidationErrors)
	assert.Empty(t, saved.ErrorMessage)
	assert.Equal(t, 100.0, *saved.ExtractedData.SubTotal)
}

func TestManager_SaveWithViolationsLeavesRecordUntouched(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return mismatchedData(), nil
	})
	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})
	rec := accepted[0]

	stillBroken := rec.ExtractedData.Clone()
	stillBroken.VendorName = nil

	violations, err := m.Save(context.Background(), rec.ID, stillBroken)

	require.NoError(t, err)
	require.NotEmpty(t, violations)

	after := m.Review(rec.ID)
	assert.Equal(t, entity.StatusReviewPending, after.Status)
	assert.Equal(t, rec.ExtractedData, after.ExtractedData)
}

func TestManager_SaveUnknownRecord(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return validData(), nil
	})

	_, err := m.Save(context.Background(), "missing", validData())

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestManager_DeleteReleasesPreviewAndIsIdempotent(t *testing.T) {
	previews := &fakePreviews{}
	processor := NewProcessor(&fakeExtractor{fn: func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return validData(), nil
	}}, zap.NewNop())
	m := NewManager(processor, previews, nil, zap.NewNop())

	accepted, _ := m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})
	rec := accepted[0]
	require.NotEmpty(t, rec.PreviewPath)

	m.Delete(context.Background(), rec.ID)
	m.Delete(context.Background(), rec.ID) // second delete is a no-op

	assert.Equal(t, []string{rec.PreviewPath}, previews.removes)
	assert.Nil(t, m.Review(rec.ID))
}

func TestManager_NotifierToldAboutSettledProblems(t *testing.T) {
	notifier := &fakeNotifier{}
	processor := NewProcessor(&fakeExtractor{fn: func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return mismatchedData(), nil
	}}, zap.NewNop())
	m := NewManager(processor, nil, notifier, zap.NewNop())

	m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("a.pdf")})

	require.Len(t, notifier.statuses, 1)
	assert.Equal(t, entity.StatusReviewPending, notifier.statuses[0])
}

func TestManager_RestoreAndReprocessPlaceholder(t *testing.T) {
	m := newTestManager(func(context.Context, entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		return validData(), nil
	})

	m.Restore([]*entity.InvoiceRecord{{
		ID:       "restored-1",
		File:     &entity.PlaceholderFile{FileName: "old.pdf", ContentType: "application/pdf"},
		FileName: "old.pdf",
		Status:   entity.StatusCompleted,
	}})

	require.NotNil(t, m.Review("restored-1"))

	// A placeholder has no bytes, so reprocessing fails the precondition.
	require.NoError(t, m.Reprocess(context.Background(), "restored-1"))
	rec := m.Review("restored-1")
	assert.Equal(t, entity.StatusError, rec.Status)
	assert.Equal(t, "File not found or empty for processing.", rec.ErrorMessage)

	assert.ErrorIs(t, m.Reprocess(context.Background(), "missing"), ErrRecordNotFound)
}

func TestManager_StatsAndOrdering(t *testing.T) {
	m := newTestManager(func(_ context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error) {
		if file.Name() == "broken.pdf" {
			return mismatchedData(), nil
		}
		return validData(), nil
	})

	m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("first.pdf")})
	m.Intake(context.Background(), []*entity.LiveFile{pdfUpload("broken.pdf")})

	recs := m.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "broken.pdf", recs[0].FileName, "newest batch comes first")

	stats := m.Stats()
	assert.Equal(t, Stats{Total: 2, Completed: 1, NeedsAttention: 1}, stats)
}
