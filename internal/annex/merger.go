package annex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andresmz/legal-intake/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// ErrInvalidPrimaryDocument is the merger's only fatal error: when the
// primary buffer does not parse as a PDF there is nothing to append to.
var ErrInvalidPrimaryDocument = errors.New("primary document is not a valid PDF")

// OutcomeKind classifies what one annex contributed to the merged document.
type OutcomeKind string

const (
	// OutcomeEmbedded: a PDF annex, all pages copied in internal order.
	OutcomeEmbedded OutcomeKind = "embedded"

	// OutcomeImaged: a supported image, rendered as one centered page.
	OutcomeImaged OutcomeKind = "imaged"

	// OutcomePlaceholder: an unembeddable type, one informational page.
	OutcomePlaceholder OutcomeKind = "placeholder"

	// OutcomeFailed: processing failed, one error page.
	OutcomeFailed OutcomeKind = "failed"
)

// AnnexOutcome records the contribution of one annex, in input order.
type AnnexOutcome struct {
	Filename string
	Kind     OutcomeKind
	Pages    int
	Detail   string
}

// MergeReport describes the merged document so callers and tests can assert
// on degraded annexes without parsing the binary output.
type MergeReport struct {
	PrimaryPages int
	TotalPages   int
	Outcomes     []AnnexOutcome
}

// mergeFunc concatenates document parts into one PDF.
type mergeFunc func(parts []io.ReadSeeker, w io.Writer, conf *model.Configuration) error

// Merger concatenates a rendered letter with heterogeneous annex buffers into
// one PDF. Stateless; pure function of its inputs.
type Merger struct {
	conf   *model.Configuration
	merge  mergeFunc
	logger *zap.Logger
}

// NewMerger creates a merger.
func NewMerger(logger *zap.Logger) *Merger {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Merger{
		conf: conf,
		merge: func(parts []io.ReadSeeker, w io.Writer, conf *model.Configuration) error {
			return api.MergeRaw(parts, w, false, conf)
		},
		logger: logger,
	}
}

// PageCount returns the number of pages in a PDF document.
func (m *Merger) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), m.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// Merge appends each annex's contribution to the primary document in input
// order. One bad annex never aborts the merge: it degrades to a single error
// page and processing continues with the next annex. Contributions are merged
// one at a time so an annex that breaks only at merge time is still isolated.
func (m *Merger) Merge(primary []byte, annexes []models.Annex) ([]byte, *MergeReport, error) {
	primaryPages, err := api.PageCount(bytes.NewReader(primary), m.conf)
	if err != nil || primaryPages < 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPrimaryDocument, err)
	}

	report := &MergeReport{PrimaryPages: primaryPages, TotalPages: primaryPages}

	if len(annexes) == 0 {
		return primary, report, nil
	}

	current := primary
	for _, a := range annexes {
		contribution, outcome := m.processAnnex(a)
		if len(contribution) > 0 {
			merged, err := m.appendPart(current, contribution)
			if err != nil {
				// Passed its own checks but broke the merge; degrade it like
				// any other bad annex and keep going.
				m.failAnnex(a, err.Error(), &contribution, &outcome)
				if len(contribution) > 0 {
					if merged, err = m.appendPart(current, contribution); err == nil {
						current = merged
					} else {
						m.logger.Error("Failed to merge error page", zap.Error(err))
						outcome.Pages = 0
					}
				}
			} else {
				current = merged
			}
		}
		report.TotalPages += outcome.Pages
		report.Outcomes = append(report.Outcomes, outcome)

		m.logger.Debug("Annex processed",
			zap.String("filename", a.Filename),
			zap.String("outcome", string(outcome.Kind)),
			zap.Int("pages", outcome.Pages))
	}

	m.logger.Info("Annexes merged",
		zap.Int("annex_count", len(annexes)),
		zap.Int("primary_pages", primaryPages),
		zap.Int("total_pages", report.TotalPages))

	return current, report, nil
}

// appendPart merges one contribution onto the document built so far.
func (m *Merger) appendPart(current, part []byte) ([]byte, error) {
	var out bytes.Buffer
	parts := []io.ReadSeeker{bytes.NewReader(current), bytes.NewReader(part)}
	if err := m.merge(parts, &out, m.conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// processAnnex resolves one annex into its contribution bytes and outcome.
// This is the per-annex failure boundary: any error or panic below it turns
// into an error page, never a merge abort.
func (m *Merger) processAnnex(a models.Annex) (contribution []byte, outcome AnnexOutcome) {
	outcome = AnnexOutcome{Filename: a.Filename}

	defer func() {
		if r := recover(); r != nil {
			m.failAnnex(a, fmt.Sprintf("panic: %v", r), &contribution, &outcome)
		}
	}()

	ct := normalizeContentType(a)
	switch {
	case ct == "application/pdf":
		pages, err := api.PageCount(bytes.NewReader(a.Data), m.conf)
		if err != nil {
			m.failAnnex(a, err.Error(), &contribution, &outcome)
			return
		}
		outcome.Kind = OutcomeEmbedded
		outcome.Pages = pages
		contribution = a.Data

	case ct == "image/jpeg" || ct == "image/png":
		imageType := "JPEG"
		if ct == "image/png" {
			imageType = "PNG"
		}
		page, err := imagePage(a, imageType)
		if err != nil {
			m.failAnnex(a, err.Error(), &contribution, &outcome)
			return
		}
		outcome.Kind = OutcomeImaged
		outcome.Pages = 1
		contribution = page

	default:
		// Covers unsupported image types too: an annex the sender attached
		// must never silently vanish from the package.
		page, err := infoPage(a)
		if err != nil {
			m.failAnnex(a, err.Error(), &contribution, &outcome)
			return
		}
		outcome.Kind = OutcomePlaceholder
		outcome.Pages = 1
		contribution = page
	}
	return
}

// failAnnex degrades a broken annex to a single error page. If even the error
// page cannot be produced the annex contributes nothing, which still leaves
// the merge valid.
func (m *Merger) failAnnex(a models.Annex, cause string, contribution *[]byte, outcome *AnnexOutcome) {
	m.logger.Warn("Annex failed, emitting error page",
		zap.String("filename", a.Filename),
		zap.String("cause", cause))

	outcome.Kind = OutcomeFailed
	outcome.Detail = cause

	page, err := errorPage(a, cause)
	if err != nil {
		m.logger.Error("Failed to build error page", zap.Error(err))
		*contribution = nil
		outcome.Pages = 0
		return
	}
	*contribution = page
	outcome.Pages = 1
}

// normalizeContentType strips MIME parameters and falls back to content
// sniffing when the upload declared no type.
func normalizeContentType(a models.Annex) string {
	ct := a.ContentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(a.Data).String()
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
	}
	return ct
}
