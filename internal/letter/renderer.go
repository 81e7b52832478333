package letter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andresmz/legal-intake/internal/models"
	"go.uber.org/zap"
)

// RenderedLetter is the tagged render outcome. Callers inspect Format to know
// whether fixed-layout conversion happened; a docx result is not an error.
type RenderedLetter struct {
	Format models.DocumentFormat
	Bytes  []byte
}

// Config holds the renderer's collaborators. Template location and the clock
// are injected so tests can substitute fixture templates and a frozen time.
type Config struct {
	Store     TemplateStore
	Converter DocumentConverter // optional; nil disables conversion
	Clock     func() time.Time  // optional; defaults to time.Now
	Logger    *zap.Logger
}

// Renderer substitutes case form data into the letter template for a case
// type. Stateless; one instance serves concurrent requests.
type Renderer struct {
	store     TemplateStore
	converter DocumentConverter
	clock     func() time.Time
	logger    *zap.Logger
}

// NewRenderer creates a renderer from its configuration.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("renderer requires a template store")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		store:     cfg.Store,
		converter: cfg.Converter,
		clock:     clock,
		logger:    logger,
	}, nil
}

// RenderLetter renders the letter for the case type. The case type is checked
// before any template I/O. Substitution is all-or-nothing; conversion to PDF
// is best-effort and its failure is reflected only in the returned Format.
func (r *Renderer) RenderLetter(ctx context.Context, form *FormData, caseType models.CaseType) (*RenderedLetter, error) {
	if !caseType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCaseType, string(caseType))
	}

	template, err := r.store.Load(ctx, caseType)
	if err != nil {
		return nil, err
	}

	fields, lists := buildContext(form, r.clock())

	rendered, err := renderDocx(template, fields, lists)
	if err != nil {
		r.logger.Error("Letter render failed",
			zap.String("case_type", string(caseType)),
			zap.Error(err))
		return nil, err
	}

	if r.converter == nil {
		return &RenderedLetter{Format: models.FormatDocx, Bytes: rendered}, nil
	}

	pdf, err := r.converter.ToPDF(ctx, rendered)
	if err != nil {
		// Degraded but valid outcome: hand back the Word archive and let the
		// caller read the format tag.
		r.logger.Warn("PDF conversion failed, returning Word archive",
			zap.String("case_type", string(caseType)),
			zap.Error(err))
		return &RenderedLetter{Format: models.FormatDocx, Bytes: rendered}, nil
	}

	r.logger.Info("Letter rendered",
		zap.String("case_type", string(caseType)),
		zap.String("format", string(models.FormatPDF)),
		zap.Int("size", len(pdf)))

	return &RenderedLetter{Format: models.FormatPDF, Bytes: pdf}, nil
}

// buildContext applies the per-field formatting rules and computes the
// render-time "today" fields from the injected clock.
func buildContext(form *FormData, now time.Time) (map[string]string, map[string][]map[string]string) {
	fields := map[string]string{
		"nombreAsegurado":    orSentinel(form.NombreAsegurado, sentinelNombre),
		"cedulaAsegurado":    orSentinel(form.CedulaAsegurado, sentinelCedula),
		"placaAsegurado":     orSentinel(form.PlacaAsegurado, sentinelPlaca),
		"placaTercero":       orSentinel(form.PlacaTercero, sentinelPlaca),
		"nombreConductor":    orSentinel(form.NombreConductor, sentinelNombre),
		"aseguradora":        orSentinel(form.Aseguradora, sentinelEmpresa),
		"numeroPoliza":       orSentinel(form.NumeroPoliza, sentinelPoliza),
		"ciudad":             orSentinel(form.Ciudad, sentinelCiudad),
		"direccionAccidente": orSentinel(form.DireccionAccidente, sentinelDireccion),
		"fechaAccidente":     formatAccidentDate(form.DiaAccidente, form.MesAccidente, form.AnioAccidente),
		"valorEstimado":      formatCurrency(form.ValorEstimado),
		"diaHoy":             strconv.Itoa(now.Day()),
		"mesHoy":             spanishMonths[now.Month()-1],
		"anioHoy":            strconv.Itoa(now.Year()),
		"fechaHoy":           formatLongDate(now),
	}

	correos := promoteEmails(form.CorreosCompania)
	items := make([]map[string]string, 0, len(correos))
	for _, c := range correos {
		items = append(items, map[string]string{"correo": c})
	}
	lists := map[string][]map[string]string{"correos": items}

	return fields, lists
}
