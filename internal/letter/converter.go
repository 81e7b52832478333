package letter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DocumentConverter converts a rendered Word archive into fixed-layout PDF
// bytes. Conversion is the one unbounded-latency dependency of the renderer,
// so implementations must honor the context.
type DocumentConverter interface {
	ToPDF(ctx context.Context, docx []byte) ([]byte, error)
}

// LibreOfficeConverter shells out to a headless LibreOffice binary. The
// conversion round-trips through a temp directory because soffice only
// operates on files.
type LibreOfficeConverter struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewLibreOfficeConverter creates a converter using the given soffice binary.
func NewLibreOfficeConverter(binary string, timeout time.Duration, logger *zap.Logger) *LibreOfficeConverter {
	if binary == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LibreOfficeConverter{binary: binary, timeout: timeout, logger: logger}
}

// ToPDF converts the archive bytes to PDF.
func (c *LibreOfficeConverter) ToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "letter-convert-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "carta.docx")
	if err := os.WriteFile(inPath, docx, 0644); err != nil {
		return nil, fmt.Errorf("failed to write conversion input: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless", "--norestore",
		"--convert-to", "pdf",
		"--outdir", dir,
		inPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("conversion command failed: %w (output: %s)", err, string(out))
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "carta.pdf"))
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}

	c.logger.Debug("Converted letter to PDF",
		zap.Int("docx_size", len(docx)),
		zap.Int("pdf_size", len(pdf)))

	return pdf, nil
}

var _ DocumentConverter = (*LibreOfficeConverter)(nil)
