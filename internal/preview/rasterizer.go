// Package preview rasterizes the generated letter for the intake UI's
// editor pane, which shows the first page while staff review the text.
package preview

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Rasterizer turns the first page of a PDF into a PNG.
type Rasterizer struct {
	logger *zap.Logger
}

// NewRasterizer creates a rasterizer.
func NewRasterizer(logger *zap.Logger) *Rasterizer {
	return &Rasterizer{logger: logger}
}

// FirstPagePNG renders page 1 of the PDF as PNG bytes.
func (r *Rasterizer) FirstPagePNG(pdf []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize first page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	r.logger.Debug("Preview rendered",
		zap.Int("pdf_size", len(pdf)),
		zap.Int("png_size", buf.Len()))

	return buf.Bytes(), nil
}
