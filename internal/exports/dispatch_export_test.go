package exports

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/andresmz/legal-intake/internal/models"
	"github.com/andresmz/legal-intake/internal/repository"
	"github.com/andresmz/legal-intake/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestExporter(t *testing.T) (*DispatchExporter, *repository.DispatchRepository) {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "dispatch.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(db, logger))

	repo := repository.NewDispatchRepository(db, logger)
	return NewDispatchExporter(repo, logger), repo
}

func TestExportXLSX(t *testing.T) {
	exporter, repo := newTestExporter(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.DispatchRecord{
		CaseType:       models.CaseTypeDamage,
		Filename:       "carta-danos-2024-06-03.pdf",
		Format:         models.FormatPDF,
		PageCount:      7,
		AnnexCount:     3,
		Recipients:     "juridica@aseguradora.co",
		RegistryCaseID: "case-0042",
	}))

	workbook, err := exporter.ExportXLSX(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Registros")

	rows, err := f.GetRows("Registros")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"ID", "Tipo de caso", "Archivo", "Formato", "Páginas",
		"Anexos", "Destinatarios", "Caso registrado", "Fecha"}, rows[0])

	assert.Equal(t, "Reclamación por daños", rows[1][1])
	assert.Equal(t, "carta-danos-2024-06-03.pdf", rows[1][2])
	assert.Equal(t, "pdf", rows[1][3])
	assert.Equal(t, "7", rows[1][4])
	assert.Equal(t, "case-0042", rows[1][7])
}

func TestExportXLSXEmptyLog(t *testing.T) {
	exporter, _ := newTestExporter(t)

	workbook, err := exporter.ExportXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Registros")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ID", rows[0][0])
}
