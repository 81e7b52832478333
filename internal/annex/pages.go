package annex

import (
	"bytes"
	"fmt"

	"github.com/andresmz/legal-intake/internal/models"
	"github.com/go-pdf/fpdf"
)

// Synthetic pages are built as standalone one-page PDFs and concatenated by
// the merger, so every annex contributes through the same page pipeline.

// pageMargin is the fixed margin, in points, kept around embedded images and
// placeholder text on each side of the page.
const pageMargin = 50.0

// imagePage draws the annex image on a single A4 page, scaled preserving
// aspect ratio to fit inside the margins and centered on both axes.
func imagePage(a models.Annex, imageType string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(a.Filename, opts, bytes.NewReader(a.Data))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", a.Filename, err)
	}

	pageW, pageH := pdf.GetPageSize()
	maxW := pageW - 2*pageMargin
	maxH := pageH - 2*pageMargin

	imgW, imgH := info.Width(), info.Height()
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("image %s has no dimensions", a.Filename)
	}

	scale := maxW / imgW
	if s := maxH / imgH; s < scale {
		scale = s
	}
	drawW := imgW * scale
	drawH := imgH * scale

	x := (pageW - drawW) / 2
	y := (pageH - drawH) / 2
	pdf.ImageOptions(a.Filename, x, y, drawW, drawH, false, opts, 0, "")

	return outputPDF(pdf)
}

// infoPage emits the placeholder page for an annex that cannot be embedded,
// naming the file, its declared type and size, and pointing the recipient to
// the original attachment sent alongside the letter.
func infoPage(a models.Annex) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.MultiCell(0, 20, "Anexo no incrustable", "", "L", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"Archivo: %s\nTipo declarado: %s\nTamaño: %s\n\n"+
			"Este anexo no puede incorporarse directamente al documento. "+
			"Consulte el archivo original, enviado por separado junto con esta carta.",
		a.Filename, a.ContentType, humanSize(len(a.Data)))
	pdf.MultiCell(0, 16, body, "", "L", false)

	return outputPDF(pdf)
}

// errorPage emits the placeholder page for an annex whose processing failed.
func errorPage(a models.Annex, cause string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.MultiCell(0, 20, "Anexo ilegible", "", "L", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"Archivo: %s\n\nEl anexo no pudo procesarse y no se incluye en este documento. "+
			"Detalle: %s",
		a.Filename, cause)
	pdf.MultiCell(0, 16, body, "", "L", false)

	return outputPDF(pdf)
}

func outputPDF(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to produce page: %w", err)
	}
	return buf.Bytes(), nil
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
