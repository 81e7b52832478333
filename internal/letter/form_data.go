package letter

import "strings"

// FormData is the typed case form filled by intake staff. Every field has a
// sentinel substitution for when it arrives blank, so a half-filled form still
// renders a complete letter with visible filler runs instead of empty gaps.
type FormData struct {
	NombreAsegurado    string // insured party full name
	CedulaAsegurado    string // national ID number
	PlacaAsegurado     string // insured vehicle plate
	PlacaTercero       string // third-party vehicle plate
	NombreConductor    string // driver full name
	Aseguradora        string // third-party insurance company
	NumeroPoliza       string // policy number
	Ciudad             string // city where the accident happened
	DireccionAccidente string // street address of the accident

	// Accident date arrives as three separate inputs; the month is the
	// Spanish month name as selected in the form.
	DiaAccidente  string
	MesAccidente  string
	AnioAccidente string

	// ValorEstimado is the claimed amount. Numeric input is reformatted with
	// es-CO thousands grouping; anything else passes through as written.
	ValorEstimado string

	// CorreosCompania feeds the repeating block of the damage-claim template.
	// A single scalar is promoted to a one-element list upstream; blank
	// entries render zero rows rather than failing.
	CorreosCompania []string
}

// Sentinel filler per field. The run length suggests the expected format in
// the rendered letter; a reviewer spotting one knows that field was left
// blank on intake.
const (
	sentinelNombre    = "XXXXXXXXXXXXXXXXXXXX"
	sentinelCedula    = "XXXXXXXXXX"
	sentinelPlaca     = "XXX-XXX"
	sentinelEmpresa   = "XXXXXXXXXXXXXXX"
	sentinelPoliza    = "XXXXXXXXXX"
	sentinelCiudad    = "XXXXXXXXXX"
	sentinelDireccion = "XXXXXXXXXXXXXXXXXXXX"
	sentinelFecha     = "XX de XXXXX del XXXX"
	sentinelValor     = "$ X.XXX.XXX"
)

// orSentinel returns the trimmed value, or the field sentinel when blank.
func orSentinel(v, sentinel string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return sentinel
}
