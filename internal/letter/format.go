package letter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var colombianSpanish = message.NewPrinter(language.MustParse("es-CO"))

// formatAccidentDate composes the three accident-date inputs into a long
// Spanish date ("14 de marzo del 2024"). If any part is blank the whole field
// falls back to the sentinel date; a partially real date would read as a
// clerical error in a legal letter.
func formatAccidentDate(day, monthName, year string) string {
	day = strings.TrimSpace(day)
	monthName = strings.TrimSpace(monthName)
	year = strings.TrimSpace(year)
	if day == "" || monthName == "" || year == "" {
		return sentinelFecha
	}
	return fmt.Sprintf("%s de %s del %s", day, strings.ToLower(monthName), year)
}

// formatLongDate renders a time as the same long Spanish form, used for the
// letter's own date line.
func formatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s del %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// formatCurrency reformats a numeric claim amount with es-CO thousands
// grouping ("$ 1.234.567"). Non-numeric input passes through as written and
// blank input yields the sentinel amount.
func formatCurrency(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return sentinelValor
	}
	// A comma marks an es-CO decimal part. Stripping it would misread the
	// cents as thousands, so such amounts pass through as written.
	if strings.Contains(s, ",") {
		return s
	}
	digits := strings.NewReplacer("$", "", " ", "", ".", "").Replace(s)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return s
	}
	return "$ " + colombianSpanish.Sprint(number.Decimal(n))
}

// promoteEmails normalizes the multi-value email field: entries are trimmed,
// blanks dropped. An empty result is valid and renders zero repeating rows.
func promoteEmails(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
