package models

import "time"

// CaseType is the claim category selecting template and downstream labeling.
type CaseType string

const (
	// CaseTypeDamage is a traffic-accident damage liability claim.
	CaseTypeDamage CaseType = "danos"

	// CaseTypeTheft is a vehicle theft claim.
	CaseTypeTheft CaseType = "hurto"
)

// IsValid returns true if the case type is a recognized value.
func (t CaseType) IsValid() bool {
	switch t {
	case CaseTypeDamage, CaseTypeTheft:
		return true
	}
	return false
}

// Label returns the human-readable Spanish label used in filenames and logs.
func (t CaseType) Label() string {
	switch t {
	case CaseTypeDamage:
		return "Reclamación por daños"
	case CaseTypeTheft:
		return "Reclamación por hurto"
	default:
		return string(t)
	}
}

// TemplateName returns the template artifact name for the case type.
func (t CaseType) TemplateName() string {
	return "plantilla_" + string(t) + ".docx"
}

// ParseCaseType maps a request value onto the closed enum. There is no
// fallback template; anything unrecognized is rejected upstream.
func ParseCaseType(s string) (CaseType, bool) {
	t := CaseType(s)
	return t, t.IsValid()
}

// DocumentFormat represents the output format of a rendered letter.
type DocumentFormat string

const (
	// FormatDocx is the Word XML-zip archive as rendered from the template.
	FormatDocx DocumentFormat = "docx"

	// FormatPDF is the fixed-layout form after successful conversion.
	FormatPDF DocumentFormat = "pdf"
)

// ContentType returns the MIME content type for the format.
func (f DocumentFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// FileExtension returns the file extension for the format.
func (f DocumentFormat) FileExtension() string {
	return string(f)
}

// Annex is one caller-supplied attachment to be merged into the package.
// The input set is unordered but merge order follows slice order.
type Annex struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DispatchRecord is one generated-package row in the dispatch log.
type DispatchRecord struct {
	ID             int64
	CaseType       CaseType
	Filename       string
	Format         DocumentFormat
	PageCount      int
	AnnexCount     int
	Recipients     string
	RegistryCaseID string
	CreatedAt      time.Time
}
