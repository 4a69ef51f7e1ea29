package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hereandnowai/invoice-processor/internal/assistant"
	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/internal/export"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/storage"
	"github.com/hereandnowai/invoice-processor/internal/invoice"
	"github.com/hereandnowai/invoice-processor/internal/session"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	manager    *invoice.Manager
	appSession *session.AppSession
	responder  assistant.Responder
	reporter   *export.ExcelReporter
	files      *storage.LocalFileStorage
	logger     Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	manager *invoice.Manager,
	appSession *session.AppSession,
	responder assistant.Responder,
	reporter *export.ExcelReporter,
	files *storage.LocalFileStorage,
	logger Logger,
) *Handlers {
	return &Handlers{
		manager:    manager,
		appSession: appSession,
		responder:  responder,
		reporter:   reporter,
		files:      files,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse reports the outcome of a batch upload.
type UploadResponse struct {
	Accepted []*entity.InvoiceRecord   `json:"accepted"`
	Rejected []invoice.IntakeRejection `json:"rejected"`
}

// SaveReviewResponse reports a rejected review save.
type SaveReviewResponse struct {
	Violations []entity.ValidationError `json:"violations"`
}

// AssistantRequest is a new message in an assistant conversation.
type AssistantRequest struct {
	Language string              `json:"language"`
	History  []assistant.Message `json:"history"`
	Message  string              `json:"message" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// UploadInvoices handles POST /api/invoices. It accepts a multipart batch
// under the "files" field, processes it to completion and returns the
// settled records plus any per-file rejections.
func (h *Handlers) UploadInvoices(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid multipart form"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "no files provided"})
		return
	}

	var uploads []*entity.LiveFile
	for _, fh := range fileHeaders {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file: " + fh.Filename})
			return
		}
		// Read one byte past the limit so oversized files are rejected by
		// intake with the proper message instead of silently truncated.
		data, err := io.ReadAll(io.LimitReader(src, entity.MaxFileSizeBytes+1))
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file: " + fh.Filename})
			return
		}
		uploads = append(uploads, &entity.LiveFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	accepted, rejected := h.manager.Intake(c.Request.Context(), uploads)
	h.persist(c)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    UploadResponse{Accepted: accepted, Rejected: rejected},
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.manager.Records()})
}

// Stats handles GET /api/invoices/stats
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.manager.Stats()})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	rec := h.manager.Review(c.Param("id"))
	if rec == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rec})
}

// SaveReview handles PUT /api/invoices/:id. The body is the edited
// extracted data; a body that still fails validation is rejected with the
// violations and the record is left untouched.
func (h *Handlers) SaveReview(c *gin.Context) {
	var edited entity.ExtractedInvoiceData
	if err := c.ShouldBindJSON(&edited); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	violations, err := h.manager.Save(c.Request.Context(), c.Param("id"), &edited)
	if err != nil {
		if errors.Is(err, invoice.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
			return
		}
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    SaveReviewResponse{Violations: violations},
			Error:   "corrected data still has validation errors",
		})
		return
	}

	h.persist(c)
	c.JSON(http.StatusOK, Response{Success: true, Data: h.manager.Review(c.Param("id"))})
}

// DeleteInvoice handles DELETE /api/invoices/:id. Deletion is idempotent.
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	h.manager.Delete(c.Request.Context(), c.Param("id"))
	h.persist(c)
	c.Status(http.StatusNoContent)
}

// ReprocessInvoice handles POST /api/invoices/:id/reprocess
func (h *Handlers) ReprocessInvoice(c *gin.Context) {
	err := h.manager.Reprocess(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, invoice.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
			return
		}
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	h.persist(c)
	c.JSON(http.StatusOK, Response{Success: true, Data: h.manager.Review(c.Param("id"))})
}

// Preview handles GET /api/invoices/:id/preview
func (h *Handlers) Preview(c *gin.Context) {
	rec := h.manager.Review(c.Param("id"))
	if rec == nil || rec.PreviewPath == "" {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "preview not available"})
		return
	}
	data, err := h.files.Read(c.Request.Context(), rec.PreviewPath)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "preview not available"})
		return
	}
	c.Data(http.StatusOK, rec.MediaType, data)
}

// ExportInvoices handles GET /api/invoices/export
func (h *Handlers) ExportInvoices(c *gin.Context) {
	buf, err := h.reporter.WriteReport(h.manager.Records())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to generate export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ResetCollection handles DELETE /api/invoices
func (h *Handlers) ResetCollection(c *gin.Context) {
	if err := h.appSession.Reset(c.Request.Context()); err != nil {
		h.logger.Error("reset failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to reset collection"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Assistant handles POST /api/assistant
func (h *Handlers) Assistant(c *gin.Context) {
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	reply, err := h.responder.Respond(c.Request.Context(), &assistant.Session{
		Language: req.Language,
		History:  req.History,
	}, req.Message)
	if err != nil {
		var aerr *assistant.Error
		if errors.As(err, &aerr) {
			c.JSON(http.StatusBadGateway, Response{Success: false, Error: aerr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "assistant unavailable"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"reply": reply}})
}

// persist snapshots the collection after a mutation. Failures are logged,
// not surfaced: the in-memory collection is the source of truth.
func (h *Handlers) persist(c *gin.Context) {
	if err := h.appSession.Persist(c.Request.Context()); err != nil {
		h.logger.Error("session persist failed", "error", err)
	}
}
