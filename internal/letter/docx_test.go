package letter

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTemplate wraps a document body in a minimal Word archive.
func buildTemplate(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   `<w:document><w:body><w:p><w:t>` + body + `</w:t></w:p></w:body></w:document>`,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// readDocumentXML extracts the document body entry from a rendered archive.
func readDocumentXML(t *testing.T, docx []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			content, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(content)
		}
	}
	t.Fatal("rendered archive has no word/document.xml")
	return ""
}

func TestRenderDocxSubstitutesFields(t *testing.T) {
	template := buildTemplate(t, "Señores {aseguradora}, placa {placa}.")

	out, err := renderDocx(template,
		map[string]string{"aseguradora": "Seguros Andinos", "placa": "ABC-123"},
		nil)
	require.NoError(t, err)

	doc := readDocumentXML(t, out)
	assert.Contains(t, doc, "Señores Seguros Andinos, placa ABC-123.")
	assert.NotContains(t, doc, "{aseguradora}")
}

func TestRenderDocxEscapesXML(t *testing.T) {
	template := buildTemplate(t, "Empresa: {empresa}")

	out, err := renderDocx(template,
		map[string]string{"empresa": `Pérez & Hijos <S.A.>`},
		nil)
	require.NoError(t, err)

	doc := readDocumentXML(t, out)
	assert.Contains(t, doc, "Pérez &amp; Hijos &lt;S.A.&gt;")
}

func TestRenderDocxRepeatingBlock(t *testing.T) {
	template := buildTemplate(t, "Correos:{#correos}<fila>{correo}</fila>{/correos}fin")

	tests := []struct {
		name     string
		items    []map[string]string
		wantRows int
	}{
		{"three rows", []map[string]string{{"correo": "a@x.co"}, {"correo": "b@x.co"}, {"correo": "c@x.co"}}, 3},
		{"single row", []map[string]string{{"correo": "a@x.co"}}, 1},
		{"empty list renders zero rows", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renderDocx(template, nil, map[string][]map[string]string{"correos": tt.items})
			require.NoError(t, err)

			doc := readDocumentXML(t, out)
			assert.Equal(t, tt.wantRows, strings.Count(doc, "<fila>"))
			assert.NotContains(t, doc, "{#correos}")
			assert.NotContains(t, doc, "{/correos}")
			assert.Contains(t, doc, "fin")
		})
	}
}

func TestRenderDocxUnterminatedBlock(t *testing.T) {
	template := buildTemplate(t, "Correos:{#correos}<fila>{correo}</fila>")

	_, err := renderDocx(template, nil, map[string][]map[string]string{"correos": {{"correo": "a@x.co"}}})
	require.Error(t, err)

	var renderErr *TemplateRenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, renderErr.Detail, "correos")
}

func TestRenderDocxCorruptArchive(t *testing.T) {
	_, err := renderDocx([]byte("this is not a zip archive"), map[string]string{"x": "y"}, nil)

	var renderErr *TemplateRenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestRenderDocxPreservesOtherEntries(t *testing.T) {
	template := buildTemplate(t, "{campo}")

	out, err := renderDocx(template, map[string]string{"campo": "valor"}, nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "word/document.xml")
}

func TestRenderDocxDeterministic(t *testing.T) {
	template := buildTemplate(t, "Hola {nombre}")
	fields := map[string]string{"nombre": "Ana"}

	first, err := renderDocx(template, fields, nil)
	require.NoError(t, err)
	second, err := renderDocx(template, fields, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
