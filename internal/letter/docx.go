package letter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// The template engine operates on the Word XML-zip archive directly: the
// document body and any headers/footers are XML entries whose text carries
// {campo} placeholders. Substitution rewrites those entries and copies every
// other archive member through untouched.
//
// Repeating blocks use {#lista}...{/lista} delimiters. The enclosed segment
// is duplicated once per list item with the item's own placeholders applied,
// so an empty list removes the segment entirely (zero rows, not an error).

// renderDocx substitutes fields and expands repeating blocks in the template
// archive. Any structural defect (unreadable archive, unterminated block)
// aborts the whole render.
func renderDocx(template []byte, fields map[string]string, lists map[string][]map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, &TemplateRenderError{Detail: "template archive is not readable", Cause: err}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &TemplateRenderError{Detail: "cannot open archive entry " + f.Name, Cause: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &TemplateRenderError{Detail: "cannot read archive entry " + f.Name, Cause: err}
		}

		if isTextualEntry(f.Name) {
			rendered, err := renderEntry(string(content), fields, lists)
			if err != nil {
				return nil, err
			}
			content = []byte(rendered)
		}

		// Deterministic output: carry only name and method so two renders of
		// the same input are byte-identical.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			return nil, &TemplateRenderError{Detail: "cannot write archive entry " + f.Name, Cause: err}
		}
		if _, err := w.Write(content); err != nil {
			return nil, &TemplateRenderError{Detail: "cannot write archive entry " + f.Name, Cause: err}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &TemplateRenderError{Detail: "cannot finalize rendered archive", Cause: err}
	}
	return buf.Bytes(), nil
}

// isTextualEntry reports whether an archive member carries substitutable
// document text.
func isTextualEntry(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	return strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") ||
		strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml")
}

// renderEntry expands repeating blocks first, then plain placeholders, over
// one XML entry.
func renderEntry(content string, fields map[string]string, lists map[string][]map[string]string) (string, error) {
	var err error
	for key, items := range lists {
		content, err = expandBlock(content, key, items)
		if err != nil {
			return "", err
		}
	}
	for key, value := range fields {
		content = strings.ReplaceAll(content, "{"+key+"}", escapeXML(value))
	}
	return content, nil
}

// expandBlock replaces every {#key}...{/key} region with one copy of the
// region per item. A block opened but never closed is a template defect.
func expandBlock(content, key string, items []map[string]string) (string, error) {
	open := "{#" + key + "}"
	closing := "{/" + key + "}"

	for {
		start := strings.Index(content, open)
		if start < 0 {
			return content, nil
		}
		rest := content[start+len(open):]
		end := strings.Index(rest, closing)
		if end < 0 {
			return "", &TemplateRenderError{Detail: fmt.Sprintf("repeating block %q is not terminated", key)}
		}
		segment := rest[:end]

		var expanded strings.Builder
		for _, item := range items {
			row := segment
			for k, v := range item {
				row = strings.ReplaceAll(row, "{"+k+"}", escapeXML(v))
			}
			expanded.WriteString(row)
		}
		content = content[:start] + expanded.String() + rest[end+len(closing):]
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
