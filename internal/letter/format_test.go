package letter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAccidentDate(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year string
		want             string
	}{
		{"complete date", "14", "Marzo", "2024", "14 de marzo del 2024"},
		{"lowercase month kept", "3", "octubre", "2023", "3 de octubre del 2023"},
		{"missing day", "", "marzo", "2024", sentinelFecha},
		{"missing month", "14", "", "2024", sentinelFecha},
		{"missing year", "14", "marzo", " ", sentinelFecha},
		{"all blank", "", "", "", sentinelFecha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAccidentDate(tt.day, tt.month, tt.year))
		})
	}
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "14 de marzo del 2024",
		formatLongDate(time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 de enero del 2025",
		formatLongDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain integer", "2500000", "$ 2.500.000"},
		{"already grouped", "2.500.000", "$ 2.500.000"},
		{"with currency sign", "$ 1200000", "$ 1.200.000"},
		{"small amount", "900", "$ 900"},
		{"non numeric passes through", "por determinar", "por determinar"},
		{"decimal comma passes through", "2.500.000,50", "2.500.000,50"},
		{"decimal comma with sign passes through", "$ 1.200,75", "$ 1.200,75"},
		{"blank yields sentinel", "  ", sentinelValor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCurrency(tt.in))
		})
	}
}

func TestPromoteEmails(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trims and drops blanks", []string{" a@x.co ", "", "b@x.co", "  "}, []string{"a@x.co", "b@x.co"}},
		{"single scalar", []string{"solo@x.co"}, []string{"solo@x.co"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promoteEmails(tt.in))
		})
	}
}
