package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresmz/legal-intake/internal/models"
	"github.com/andresmz/legal-intake/pkg/database"
	"go.uber.org/zap"
)

// DispatchRepository records generated letter packages in the dispatch log.
type DispatchRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(db *database.DB, logger *zap.Logger) *DispatchRepository {
	return &DispatchRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a dispatch record. The insert and the id readback run in one
// transaction so they see the same connection.
func (r *DispatchRepository) Create(ctx context.Context, record *models.DispatchRecord) error {
	query := `
		INSERT INTO dispatch_log (
			case_type, filename, format, page_count, annex_count,
			recipients, registry_case_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			string(record.CaseType),
			record.Filename,
			string(record.Format),
			record.PageCount,
			record.AnnexCount,
			record.Recipients,
			record.RegistryCaseID,
		)
		if err != nil {
			return fmt.Errorf("failed to create dispatch record: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		record.ID = id
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create dispatch record", zap.Error(err))
	}
	return err
}

// List returns the most recent dispatch records, newest first
func (r *DispatchRepository) List(ctx context.Context, limit int) ([]*models.DispatchRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, case_type, filename, format, page_count, annex_count,
			recipients, registry_case_id, created_at
		FROM dispatch_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list dispatch records", zap.Error(err))
		return nil, fmt.Errorf("failed to list dispatch records: %w", err)
	}
	defer rows.Close()

	var records []*models.DispatchRecord
	for rows.Next() {
		var record models.DispatchRecord
		var caseType, format string
		err := rows.Scan(
			&record.ID,
			&caseType,
			&record.Filename,
			&format,
			&record.PageCount,
			&record.AnnexCount,
			&record.Recipients,
			&record.RegistryCaseID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		record.CaseType = models.CaseType(caseType)
		record.Format = models.DocumentFormat(format)
		records = append(records, &record)
	}

	return records, rows.Err()
}
