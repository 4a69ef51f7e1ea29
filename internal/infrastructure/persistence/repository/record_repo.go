// Package repository persists invoice records between sessions. Only record
// metadata and extraction results are stored; the uploaded file bytes are
// not, so rehydrated records carry a placeholder file reference.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/pkg/database"
)

// Migrations returns the schema owned by this repository.
func Migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "create_invoice_records",
			SQL: `
				CREATE TABLE IF NOT EXISTS invoice_records (
					id TEXT PRIMARY KEY,
					file_name TEXT NOT NULL,
					media_type TEXT NOT NULL,
					file_size INTEGER NOT NULL,
					preview_path TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL,
					extracted_data TEXT,
					validation_errors TEXT,
					error_message TEXT NOT NULL DEFAULT '',
					uploaded_at TEXT NOT NULL,
					processed_at TEXT
				);
				CREATE INDEX IF NOT EXISTS idx_invoice_records_uploaded_at
					ON invoice_records(uploaded_at DESC);
			`,
		},
	}
}

// RecordRepository stores invoice records in sqlite.
type RecordRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewRecordRepository(db *database.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

// ReplaceAll overwrites the stored collection with the given records, in one
// transaction. The collection manager owns ordering and contents in memory;
// persistence just snapshots it.
func (r *RecordRepository) ReplaceAll(ctx context.Context, records []*entity.InvoiceRecord) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_records"); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		for _, rec := range records {
			if err := insertRecord(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Upsert stores a single record, replacing any previous row with its id.
func (r *RecordRepository) Upsert(ctx context.Context, rec *entity.InvoiceRecord) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_records WHERE id = ?", rec.ID); err != nil {
			return fmt.Errorf("replace record: %w", err)
		}
		return insertRecord(ctx, tx, rec)
	})
}

// Delete removes a record. Missing rows are not an error.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM invoice_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// GetAll loads every stored record, newest first. Each record gets a
// placeholder file reference, since file bytes are never persisted.
func (r *RecordRepository) GetAll(ctx context.Context) ([]*entity.InvoiceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, media_type, file_size, preview_path, status,
			extracted_data, validation_errors, error_message, uploaded_at, processed_at
		FROM invoice_records
		ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []*entity.InvoiceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			r.logger.Warn("skipping unreadable record row", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec *entity.InvoiceRecord) error {
	var extracted, violations sql.NullString
	if rec.ExtractedData != nil {
		raw, err := json.Marshal(rec.ExtractedData)
		if err != nil {
			return fmt.Errorf("marshal extracted data: %w", err)
		}
		extracted = sql.NullString{String: string(raw), Valid: true}
	}
	if rec.ValidationErrors != nil {
		raw, err := json.Marshal(rec.ValidationErrors)
		if err != nil {
			return fmt.Errorf("marshal validation errors: %w", err)
		}
		violations = sql.NullString{String: string(raw), Valid: true}
	}

	var processedAt sql.NullString
	if rec.ProcessedAt != nil {
		processedAt = sql.NullString{String: rec.ProcessedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO invoice_records (
			id, file_name, media_type, file_size, preview_path, status,
			extracted_data, validation_errors, error_message, uploaded_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.FileName,
		rec.MediaType,
		rec.FileSize,
		rec.PreviewPath,
		string(rec.Status),
		extracted,
		violations,
		rec.ErrorMessage,
		rec.UploadedAt.UTC().Format(time.RFC3339Nano),
		processedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (*entity.InvoiceRecord, error) {
	var (
		rec         entity.InvoiceRecord
		status      string
		extracted   sql.NullString
		violations  sql.NullString
		uploadedAt  string
		processedAt sql.NullString
	)
	if err := rows.Scan(
		&rec.ID, &rec.FileName, &rec.MediaType, &rec.FileSize, &rec.PreviewPath,
		&status, &extracted, &violations, &rec.ErrorMessage, &uploadedAt, &processedAt,
	); err != nil {
		return nil, err
	}

	rec.Status = entity.Status(status)
	if extracted.Valid {
		if err := json.Unmarshal([]byte(extracted.String), &rec.ExtractedData); err != nil {
			return nil, fmt.Errorf("unmarshal extracted data: %w", err)
		}
	}
	if violations.Valid {
		if err := json.Unmarshal([]byte(violations.String), &rec.ValidationErrors); err != nil {
			return nil, fmt.Errorf("unmarshal validation errors: %w", err)
		}
	}

	ts, err := time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse uploaded_at: %w", err)
	}
	rec.UploadedAt = ts
	if processedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, processedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse processed_at: %w", err)
		}
		rec.ProcessedAt = &ts
	}

	rec.File = &entity.PlaceholderFile{FileName: rec.FileName, ContentType: rec.MediaType}
	return &rec, nil
}
