package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"juridica@aseguradora.co",
		"siniestros+copia@aseguradora.com.co",
		"a.b_c%d@sub.dominio.org",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"sin-arroba.co",
		"@dominio.co",
		"usuario@",
		"usuario@dominio",
		"usuario @dominio.co",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestSplitRecipients(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two addresses", "a@x.co, b@x.co", []string{"a@x.co", "b@x.co"}},
		{"extra commas and spaces", " a@x.co ,, , b@x.co,", []string{"a@x.co", "b@x.co"}},
		{"single address", "a@x.co", []string{"a@x.co"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRecipients(tt.in))
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "peritaje.pdf", SanitizeString("peri\x00taje\x1f.pdf"))
	assert.Equal(t, "sin cambios", SanitizeString("sin cambios"))
}
