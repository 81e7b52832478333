package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/andresmz/legal-intake/internal/annex"
	"github.com/andresmz/legal-intake/internal/letter"
	"github.com/andresmz/legal-intake/internal/mail"
	"github.com/andresmz/legal-intake/internal/models"
	"github.com/andresmz/legal-intake/internal/registry"
	"github.com/andresmz/legal-intake/pkg/utils"
)

// maxAnnexSize caps a single uploaded annex. Larger files go to the registry
// backend directly, not through the letter package.
const maxAnnexSize = 25 << 20

// Collaborator interfaces so handlers can be tested against fakes.

// LetterRenderer renders the letter for a case form.
type LetterRenderer interface {
	RenderLetter(ctx context.Context, form *letter.FormData, caseType models.CaseType) (*letter.RenderedLetter, error)
}

// AnnexMerger concatenates the rendered letter with the uploaded annexes.
type AnnexMerger interface {
	Merge(primary []byte, annexes []models.Annex) ([]byte, *annex.MergeReport, error)
	PageCount(pdf []byte) (int, error)
}

// Previewer renders the first page of a PDF as PNG.
type Previewer interface {
	FirstPagePNG(pdf []byte) ([]byte, error)
}

// CaseRegistry is the backend case-registry client surface used here.
type CaseRegistry interface {
	CreateCase(ctx context.Context, record registry.CaseRecord) (string, error)
	ListCases(ctx context.Context) ([]registry.Case, error)
}

// DispatchStore records generated packages.
type DispatchStore interface {
	Create(ctx context.Context, record *models.DispatchRecord) error
}

// LogExporter produces the dispatch-log workbook.
type LogExporter interface {
	ExportXLSX(ctx context.Context) ([]byte, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	renderer   LetterRenderer
	merger     AnnexMerger
	previewer  Previewer
	mailer     mail.Sender
	registry   CaseRegistry
	dispatches DispatchStore
	exporter   LogExporter
	clock      func() time.Time
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	renderer LetterRenderer,
	merger AnnexMerger,
	previewer Previewer,
	mailer mail.Sender,
	caseRegistry CaseRegistry,
	dispatches DispatchStore,
	exporter LogExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		renderer:   renderer,
		merger:     merger,
		previewer:  previewer,
		mailer:     mailer,
		registry:   caseRegistry,
		dispatches: dispatches,
		exporter:   exporter,
		clock:      time.Now,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// intake is one parsed multipart submission.
type intake struct {
	caseType models.CaseType
	form     *letter.FormData
	annexes  []models.Annex
}

// parseIntake reads the multipart submission: case type, form fields, annex
// files and the two free-form JSON fields.
func (h *Handlers) parseIntake(c *gin.Context) (*intake, error) {
	caseType, ok := models.ParseCaseType(c.PostForm("tipoCaso"))
	if !ok {
		return nil, fmt.Errorf("tipoCaso is missing or not supported")
	}

	form := &letter.FormData{
		NombreAsegurado:    c.PostForm("nombreAsegurado"),
		CedulaAsegurado:    c.PostForm("cedulaAsegurado"),
		PlacaAsegurado:     c.PostForm("placaAsegurado"),
		PlacaTercero:       c.PostForm("placaTercero"),
		NombreConductor:    c.PostForm("nombreConductor"),
		Aseguradora:        c.PostForm("aseguradora"),
		NumeroPoliza:       c.PostForm("numeroPoliza"),
		Ciudad:             c.PostForm("ciudad"),
		DireccionAccidente: c.PostForm("direccionAccidente"),
		DiaAccidente:       c.PostForm("diaAccidente"),
		MesAccidente:       c.PostForm("mesAccidente"),
		AnioAccidente:      c.PostForm("anioAccidente"),
		ValorEstimado:      c.PostForm("valorEstimado"),
		CorreosCompania:    c.PostFormArray("correosCompania"),
	}

	// Accepted and logged, not structurally validated; rejecting them would
	// break in-flight clients for no rendering benefit.
	h.logFreeFormItems(c.PostForm("relacionDocumentos"), "relacionDocumentos")
	h.logFreeFormItems(c.PostForm("declaraciones"), "declaraciones")

	var annexes []models.Annex
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		for _, fh := range mf.File["anexos"] {
			a, err := readAnnex(fh)
			if err != nil {
				return nil, fmt.Errorf("annex %s is not readable: %w", fh.Filename, err)
			}
			annexes = append(annexes, a)
		}
	}

	return &intake{caseType: caseType, form: form, annexes: annexes}, nil
}

func readAnnex(fh *multipart.FileHeader) (models.Annex, error) {
	if fh.Size > maxAnnexSize {
		return models.Annex{}, fmt.Errorf("annex exceeds %d bytes", maxAnnexSize)
	}
	f, err := fh.Open()
	if err != nil {
		return models.Annex{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Annex{}, err
	}
	return models.Annex{
		Filename:    utils.SanitizeString(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handlers) logFreeFormItems(raw, field string) {
	if raw == "" {
		return
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		h.logger.Debug("Free-form field is not a JSON array", zap.String("field", field))
		return
	}
	for i, item := range items {
		h.logger.Debug("Free-form item",
			zap.String("field", field),
			zap.Int("index", i),
			zap.Any("item", item))
	}
}

// assembled is one rendered (and possibly merged) letter package.
type assembled struct {
	bytes     []byte
	format    models.DocumentFormat
	filename  string
	pageCount int
}

// assemble runs the render-then-merge pipeline for one intake. Annexes are
// merged only when conversion produced a PDF; a Word fallback is delivered
// alone, with annexes left to the original-attachment channel.
func (h *Handlers) assemble(ctx context.Context, in *intake) (*assembled, error) {
	rendered, err := h.renderer.RenderLetter(ctx, in.form, in.caseType)
	if err != nil {
		return nil, err
	}

	out := &assembled{
		bytes:  rendered.Bytes,
		format: rendered.Format,
	}

	if rendered.Format == models.FormatPDF {
		if len(in.annexes) > 0 {
			merged, report, err := h.merger.Merge(rendered.Bytes, in.annexes)
			if err != nil {
				return nil, err
			}
			out.bytes = merged
			out.pageCount = report.TotalPages

			for _, o := range report.Outcomes {
				if o.Kind == annex.OutcomeFailed {
					h.logger.Warn("Annex degraded to error page",
						zap.String("filename", o.Filename),
						zap.String("detail", o.Detail))
				}
			}
		} else if n, err := h.merger.PageCount(rendered.Bytes); err == nil {
			out.pageCount = n
		} else {
			// The count only feeds the dispatch log; the letter still ships
			h.logger.Warn("Failed to count letter pages", zap.Error(err))
		}
	}

	out.filename = fmt.Sprintf("carta-%s-%s.%s",
		in.caseType, h.clock().Format("2006-01-02"), rendered.Format.FileExtension())
	return out, nil
}

// DownloadLetter handles POST /api/v1/cartas/descargar
func (h *Handlers) DownloadLetter(c *gin.Context) {
	in, err := h.parseIntake(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	pkg, err := h.assemble(c.Request.Context(), in)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pkg.filename))
	c.Data(http.StatusOK, pkg.format.ContentType(), pkg.bytes)
}

// SendLetter handles POST /api/v1/cartas/enviar
func (h *Handlers) SendLetter(c *gin.Context) {
	recipients := utils.SplitRecipients(c.PostForm("destinatarios"))
	if len(recipients) == 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "destinatarios is required"})
		return
	}
	for _, r := range recipients {
		if err := utils.ValidateEmail(r); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
	}

	in, err := h.parseIntake(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	pkg, err := h.assemble(c.Request.Context(), in)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	ctx := c.Request.Context()
	outgoing := mail.OutgoingLetter{
		Recipients:  recipients,
		Subject:     fmt.Sprintf("%s - %s", in.caseType.Label(), h.clock().Format("2006-01-02")),
		Body:        "Se adjunta la carta de reclamación generada junto con sus anexos.",
		Filename:    pkg.filename,
		ContentType: pkg.format.ContentType(),
		Attachment:  pkg.bytes,
	}
	if err := h.mailer.SendPackage(ctx, outgoing); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to send email: " + err.Error()})
		return
	}

	caseID, err := h.registry.CreateCase(ctx, registry.CaseRecord{
		CaseType:   string(in.caseType),
		Filename:   pkg.filename,
		Recipients: recipients,
		SentAt:     h.clock(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "letter sent but case registration failed: " + err.Error()})
		return
	}

	record := &models.DispatchRecord{
		CaseType:       in.caseType,
		Filename:       pkg.filename,
		Format:         pkg.format,
		PageCount:      pkg.pageCount,
		AnnexCount:     len(in.annexes),
		Recipients:     c.PostForm("destinatarios"),
		RegistryCaseID: caseID,
	}
	if err := h.dispatches.Create(ctx, record); err != nil {
		// The package is already out; a logging gap must not fail the request
		h.logger.Error("Failed to record dispatch", zap.Error(err))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"case_id":  caseID,
		"filename": pkg.filename,
		"format":   string(pkg.format),
	}})
}

// PreviewLetter handles POST /api/v1/cartas/vista-previa
func (h *Handlers) PreviewLetter(c *gin.Context) {
	in, err := h.parseIntake(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	rendered, err := h.renderer.RenderLetter(c.Request.Context(), in.form, in.caseType)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}
	if rendered.Format != models.FormatPDF {
		c.JSON(http.StatusConflict, Response{Success: false, Error: "preview unavailable: PDF conversion did not succeed"})
		return
	}

	png, err := h.previewer.FirstPagePNG(rendered.Bytes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ListCases handles GET /api/v1/casos
func (h *Handlers) ListCases(c *gin.Context) {
	cases, err := h.registry.ListCases(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cases})
}

// ExportDispatchLog handles GET /api/v1/registros/export
func (h *Handlers) ExportDispatchLog(c *gin.Context) {
	workbook, err := h.exporter.ExportXLSX(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	filename := fmt.Sprintf("registros-%s.xlsx", h.clock().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "legal-intake",
		"time":    h.clock().Format(time.RFC3339),
	})
}

// respondPipelineError maps pipeline errors onto the envelope statuses:
// caller mistakes are 400, everything else is a server fault.
func (h *Handlers) respondPipelineError(c *gin.Context, err error) {
	if errors.Is(err, letter.ErrUnsupportedCaseType) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	h.logger.Error("Letter pipeline failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
}
