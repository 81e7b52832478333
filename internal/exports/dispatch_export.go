// Package exports produces back-office spreadsheet exports of the dispatch
// log.
package exports

import (
	"context"
	"fmt"

	"github.com/andresmz/legal-intake/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Registros"

// exportLimit caps an export at a generous window; the log is append-only
// and old rows stop being interesting to the back office.
const exportLimit = 5000

// DispatchExporter renders the dispatch log as an XLSX workbook.
type DispatchExporter struct {
	repo   *repository.DispatchRepository
	logger *zap.Logger
}

// NewDispatchExporter creates a new exporter
func NewDispatchExporter(repo *repository.DispatchRepository, logger *zap.Logger) *DispatchExporter {
	return &DispatchExporter{
		repo:   repo,
		logger: logger,
	}
}

// ExportXLSX builds the workbook and returns its bytes.
func (e *DispatchExporter) ExportXLSX(ctx context.Context) ([]byte, error) {
	records, err := e.repo.List(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch log: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Tipo de caso", "Archivo", "Formato", "Páginas", "Anexos", "Destinatarios", "Caso registrado", "Fecha"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, record := range records {
		values := []interface{}{
			record.ID,
			record.CaseType.Label(),
			record.Filename,
			string(record.Format),
			record.PageCount,
			record.AnnexCount,
			record.Recipients,
			record.RegistryCaseID,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to produce workbook: %w", err)
	}

	e.logger.Info("Dispatch log exported", zap.Int("rows", len(records)))
	return buf.Bytes(), nil
}
