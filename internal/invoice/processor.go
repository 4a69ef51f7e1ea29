package invoice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/internal/domain/workflow"
	"github.com/hereandnowai/invoice-processor/internal/validation"
)

// Extractor converts an invoice document into structured data. Failures are
// reported as *ExtractionError so the message can be surfaced verbatim.
type Extractor interface {
	Extract(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error)
}

// recordSink applies a mutation to a live record. It reports false when the
// record no longer exists, in which case the mutation must not run anywhere:
// results of a pipeline never resurrect a deleted record.
type recordSink interface {
	apply(id string, mutate func(*entity.InvoiceRecord)) bool
}

// Processor drives one invoice record through the automatic pipeline:
// extraction, then validation, then a settled state. Each run builds a fresh
// state machine seeded from the record's current status, and every status
// write goes through the sink so deletions mid-flight are respected.
type Processor struct {
	extractor Extractor
	lifecycle workflow.StateMachineBuilder
	logger    *zap.Logger
}

func NewProcessor(extractor Extractor, logger *zap.Logger) *Processor {
	return &Processor{
		extractor: extractor,
		lifecycle: workflow.NewLifecycleBuilder(),
		logger:    logger,
	}
}

// Process runs the pipeline for the given record snapshot. The snapshot
// carries the id, status and file reference; all mutations flow through sink.
func (p *Processor) Process(ctx context.Context, rec *entity.InvoiceRecord, sink recordSink) {
	machine := p.lifecycle.Build(workflow.State(rec.Status))
	id := rec.ID

	fail := func(message string) {
		if err := machine.Fire(ctx, workflow.TriggerFail); err != nil {
			p.logger.Error("cannot mark record failed",
				zap.String("record_id", id),
				zap.String("state", machine.State().String()),
				zap.Error(err))
			return
		}
		now := time.Now()
		applied := sink.apply(id, func(r *entity.InvoiceRecord) {
			r.Status = entity.Status(machine.State())
			r.ErrorMessage = message
			r.ProcessedAt = &now
		})
		if !applied {
			p.logger.Debug("record deleted mid-pipeline, dropping failure", zap.String("record_id", id))
		}
	}

	file := rec.File
	if file == nil || file.Size() == 0 {
		p.logger.Warn("source file missing or empty",
			zap.String("record_id", id),
			zap.String("file_name", rec.FileName))
		fail("File not found or empty for processing.")
		return
	}

	if err := machine.Fire(ctx, workflow.TriggerStartExtraction); err != nil {
		p.logger.Error("record not in a startable state",
			zap.String("record_id", id),
			zap.String("state", machine.State().String()),
			zap.Error(err))
		return
	}
	if !sink.apply(id, func(r *entity.InvoiceRecord) {
		r.Status = entity.Status(machine.State())
		r.ErrorMessage = ""
	}) {
		return
	}

	data, err := p.extractor.Extract(ctx, file)
	if err != nil {
		p.logger.Warn("extraction failed",
			zap.String("record_id", id),
			zap.String("file_name", rec.FileName),
			zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = "Unknown processing error"
		}
		fail(msg)
		return
	}
	EnsureLineItemIDs(data)

	if err := machine.Fire(ctx, workflow.TriggerCompleteExtraction); err != nil {
		p.logger.Error("unexpected lifecycle state after extraction",
			zap.String("record_id", id), zap.Error(err))
		return
	}
	if !sink.apply(id, func(r *entity.InvoiceRecord) {
		r.Status = entity.Status(machine.State())
		r.ExtractedData = data.Clone()
	}) {
		return
	}

	result := validation.Validate(data)
	trigger := workflow.TriggerPassValidation
	if !result.IsValid {
		trigger = workflow.TriggerRequestReview
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		p.logger.Error("unexpected lifecycle state after validation",
			zap.String("record_id", id), zap.Error(err))
		return
	}

	now := time.Now()
	applied := sink.apply(id, func(r *entity.InvoiceRecord) {
		r.Status = entity.Status(machine.State())
		r.ValidationErrors = result.Errors
		r.ProcessedAt = &now
	})
	if !applied {
		p.logger.Debug("record deleted mid-pipeline, dropping result", zap.String("record_id", id))
		return
	}

	p.logger.Info("record processed",
		zap.String("record_id", id),
		zap.String("file_name", rec.FileName),
		zap.String("status", machine.State().String()),
		zap.Int("validation_errors", len(result.Errors)))
}

// EnsureLineItemIDs assigns a synthesized id, unique within the record, to
// every line item that came back without one.
func EnsureLineItemIDs(data *entity.ExtractedInvoiceData) {
	if data == nil {
		return
	}
	for i := range data.LineItems {
		if data.LineItems[i].ID == "" {
			data.LineItems[i].ID = fmt.Sprintf("item-%d-%d", i, time.Now().UnixNano())
		}
	}
}
