package invoice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/internal/domain/workflow"
	"github.com/hereandnowai/invoice-processor/internal/validation"
)

// PreviewStore materializes a viewable copy of an uploaded document and
// releases it when the record goes away.
type PreviewStore interface {
	WritePreview(ctx context.Context, recordID string, file *entity.LiveFile) (string, error)
	RemovePreview(ctx context.Context, previewPath string) error
}

// Notifier is told about records that settled needing human attention.
// Notification is best effort and never blocks the pipeline outcome.
type Notifier interface {
	RecordNeedsAttention(ctx context.Context, rec *entity.InvoiceRecord) error
}

// IntakeRejection reports a file turned away at intake, before any record
// was created for it.
type IntakeRejection struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// Stats summarizes the collection for the dashboard.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	NeedsAttention int `json:"needsAttention"`
	Processing     int `json:"processing"`
}

// Manager owns the invoice record collection. All reads hand out deep copies
// and all writes happen under the manager's lock, so callers never share
// mutable state with the pipeline. Records are ordered newest batch first.
type Manager struct {
	mu         sync.Mutex
	records    []*entity.InvoiceRecord
	processing map[string]struct{}

	processor *Processor
	previews  PreviewStore
	notifier  Notifier
	lifecycle workflow.StateMachineBuilder
	logger    *zap.Logger
}

// NewManager creates a collection manager. previews and notifier may be nil,
// which disables the respective side effect.
func NewManager(processor *Processor, previews PreviewStore, notifier Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		processing: make(map[string]struct{}),
		processor:  processor,
		previews:   previews,
		notifier:   notifier,
		lifecycle:  workflow.NewLifecycleBuilder(),
		logger:     logger,
	}
}

// Intake accepts a batch of uploaded files. Files over the size limit or of
// an unsupported type are rejected individually; the rest become PENDING
// records, prepended to the collection in batch order, and are then processed
// strictly one at a time in that order. Intake returns once the whole batch
// has settled.
func (m *Manager) Intake(ctx context.Context, files []*entity.LiveFile) ([]*entity.InvoiceRecord, []IntakeRejection) {
	var accepted []*entity.InvoiceRecord
	var rejections []IntakeRejection

	for _, file := range files {
		if file.Size() > entity.MaxFileSizeBytes {
			rejections = append(rejections, IntakeRejection{
				FileName: file.FileName,
				Reason:   fmt.Sprintf("File %s is too large (max %dMB).", file.FileName, entity.MaxFileSizeMB),
			})
			continue
		}
		if !entity.IsSupportedMediaType(file.ContentType) {
			rejections = append(rejections, IntakeRejection{
				FileName: file.FileName,
				Reason: fmt.Sprintf("File %s has an unsupported type. Supported: %s.",
					file.FileName, strings.Join(entity.SupportedMediaTypes, ", ")),
			})
			continue
		}

		rec := &entity.InvoiceRecord{
			ID:         uuid.NewString(),
			File:       file,
			FileName:   file.FileName,
			MediaType:  file.ContentType,
			FileSize:   file.Size(),
			Status:     entity.StatusPending,
			UploadedAt: time.Now(),
		}
		if m.previews != nil {
			path, err := m.previews.WritePreview(ctx, rec.ID, file)
			if err != nil {
				m.logger.Warn("preview not written",
					zap.String("record_id", rec.ID),
					zap.String("file_name", rec.FileName),
					zap.Error(err))
			} else {
				rec.PreviewPath = path
			}
		}
		accepted = append(accepted, rec)
	}

	m.mu.Lock()
	m.records = append(append([]*entity.InvoiceRecord(nil), accepted...), m.records...)
	m.mu.Unlock()

	for _, rec := range accepted {
		m.runPipeline(ctx, rec.ID)
	}

	out := make([]*entity.InvoiceRecord, 0, len(accepted))
	for _, rec := range accepted {
		if current := m.Review(rec.ID); current != nil {
			out = append(out, current)
		}
	}
	return out, rejections
}

// Reprocess re-runs the pipeline for an existing record, for example after a
// transient extraction failure. Records rehydrated without file content fail
// the pipeline's precondition and stay in ERROR.
func (m *Manager) Reprocess(ctx context.Context, id string) error {
	m.mu.Lock()
	rec := m.find(id)
	if rec == nil {
		m.mu.Unlock()
		return ErrRecordNotFound
	}
	if _, busy := m.processing[id]; busy {
		m.mu.Unlock()
		return fmt.Errorf("record %s is already being processed", id)
	}
	rec.Status = entity.StatusPending
	rec.ErrorMessage = ""
	rec.ValidationErrors = nil
	m.mu.Unlock()

	m.runPipeline(ctx, id)
	return nil
}

func (m *Manager) runPipeline(ctx context.Context, id string) {
	m.mu.Lock()
	rec := m.find(id)
	if rec == nil {
		m.mu.Unlock()
		return
	}
	m.processing[id] = struct{}{}
	snapshot := rec.Clone()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.processing, id)
		m.mu.Unlock()
	}()

	m.processor.Process(ctx, snapshot, m)

	if m.notifier == nil {
		return
	}
	settled := m.Review(id)
	if settled == nil {
		return
	}
	if settled.Status == entity.StatusReviewPending || settled.Status == entity.StatusError {
		if err := m.notifier.RecordNeedsAttention(ctx, settled); err != nil {
			m.logger.Warn("reviewer notification failed",
				zap.String("record_id", id), zap.Error(err))
		}
	}
}

// apply implements recordSink: the mutation runs under the lock and only if
// the record still exists.
func (m *Manager) apply(id string, mutate func(*entity.InvoiceRecord)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.find(id)
	if rec == nil {
		return false
	}
	mutate(rec)
	return true
}

// Review returns a deep copy of the record, or nil when it does not exist.
// Asking for a missing record is not an error.
func (m *Manager) Review(id string) *entity.InvoiceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(id).Clone()
}

// Records returns deep copies of all records, newest batch first.
func (m *Manager) Records() []*entity.InvoiceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.InvoiceRecord, len(m.records))
	for i, rec := range m.records {
		out[i] = rec.Clone()
	}
	return out
}

// IsProcessing reports whether the record is currently inside the pipeline.
func (m *Manager) IsProcessing(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.processing[id]
	return ok
}

// Stats summarizes the collection.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Total: len(m.records), Processing: len(m.processing)}
	for _, rec := range m.records {
		switch rec.Status {
		case entity.StatusCompleted:
			s.Completed++
		case entity.StatusReviewPending, entity.StatusError:
			s.NeedsAttention++
		}
	}
	return s
}

// Save applies human-reviewed data to a record. The edited data is validated
// first: when it still has violations they are returned and the record is not
// touched in any way. A clean save fires the review transition, stores a deep
// copy of the data and clears the error state.
func (m *Manager) Save(ctx context.Context, id string, edited *entity.ExtractedInvoiceData) ([]entity.ValidationError, error) {
	result := validation.Validate(edited)
	if !result.IsValid {
		m.logger.Info("review save rejected",
			zap.String("record_id", id),
			zap.Int("violations", len(result.Errors)))
		return result.Errors, nil
	}

	var fireErr error
	applied := m.apply(id, func(r *entity.InvoiceRecord) {
		machine := m.lifecycle.Build(workflow.State(r.Status))
		if err := machine.Fire(ctx, workflow.TriggerSaveReview); err != nil {
			fireErr = fmt.Errorf("save from state %s: %w", r.Status, err)
			return
		}
		now := time.Now()
		r.Status = entity.Status(machine.State())
		r.ExtractedData = edited.Clone()
		r.ValidationErrors = nil
		r.ErrorMessage = ""
		r.ProcessedAt = &now
	})
	if !applied {
		return nil, ErrRecordNotFound
	}
	if fireErr != nil {
		return nil, fireErr
	}

	m.logger.Info("review saved", zap.String("record_id", id))
	return nil, nil
}

// Delete removes a record and releases its preview. Deleting a record that
// does not exist is a no-op; a record deleted while its pipeline is running
// stays deleted, the in-flight result is dropped.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	var previewPath string
	for i, rec := range m.records {
		if rec.ID == id {
			previewPath = rec.PreviewPath
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if previewPath != "" && m.previews != nil {
		if err := m.previews.RemovePreview(ctx, previewPath); err != nil {
			m.logger.Warn("preview not released",
				zap.String("record_id", id),
				zap.String("preview_path", previewPath),
				zap.Error(err))
		}
	}
}

// Restore replaces the collection with records rehydrated from persistence.
// Restored records keep the status they settled with; file content is
// whatever the caller attached, typically a placeholder.
func (m *Manager) Restore(records []*entity.InvoiceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make([]*entity.InvoiceRecord, len(records))
	for i, rec := range records {
		m.records[i] = rec.Clone()
	}
}

// ReleasePreviews removes every record's preview. Called when the collection
// is reset.
func (m *Manager) ReleasePreviews(ctx context.Context) {
	if m.previews == nil {
		return
	}
	m.mu.Lock()
	paths := make([]string, 0, len(m.records))
	for _, rec := range m.records {
		if rec.PreviewPath != "" {
			paths = append(paths, rec.PreviewPath)
		}
	}
	m.mu.Unlock()

	for _, path := range paths {
		if err := m.previews.RemovePreview(ctx, path); err != nil {
			m.logger.Warn("preview not released", zap.String("preview_path", path), zap.Error(err))
		}
	}
}

func (m *Manager) find(id string) *entity.InvoiceRecord {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}
