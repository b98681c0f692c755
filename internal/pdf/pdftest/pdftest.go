// Package pdftest builds template fixtures for tests: small A4 PDFs written
// to an in-memory filesystem under the file names of the default catalog.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
)

// Pages is the page count of each fixture template.
var Pages = map[string]int{
	"employer":    2,
	"worker":      2,
	"independent": 1,
	"seppt":       1,
	"accident":    1,
	"dispense":    2,
	"procuration": 1,
	"mensura":     4,
	"obligations": 3,
}

var created = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// TemplatePDF renders an A4 document whose pages each carry "<label> PAGE n"
// in 14pt Helvetica near the top left corner.
func TemplatePDF(tb testing.TB, label string, pages int) []byte {
	tb.Helper()

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetCreationDate(created)
	doc.SetModificationDate(created)
	doc.SetFont("Helvetica", "", 14)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Text(40, 40, fmt.Sprintf("%s PAGE %d", label, i))
	}

	var buf bytes.Buffer
	require.NoError(tb, doc.Output(&buf))
	return buf.Bytes()
}

// TemplateFS writes every template file of the default catalog, labelled
// "FR <id>" or "NL <id>", plus the default companions, to a MemMapFs.
func TemplateFS(tb testing.TB) afero.Fs {
	tb.Helper()

	fs := afero.NewMemMapFs()
	for _, tpl := range forms.Default().Templates() {
		for lang, v := range tpl.Variants {
			label := strings.ToUpper(string(lang)) + " " + tpl.ID
			require.NoError(tb, afero.WriteFile(fs, v.File, TemplatePDF(tb, label, Pages[tpl.ID]), 0o644))
		}
		for _, c := range tpl.Companions {
			require.NoError(tb, afero.WriteFile(fs, c, TemplatePDF(tb, "COMPANION", 1), 0o644))
		}
	}
	return fs
}
