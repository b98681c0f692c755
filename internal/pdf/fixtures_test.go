package pdf

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf/pdftest"
)

var fixturePages = pdftest.Pages

func templatePDF(t *testing.T, label string, pages int) []byte {
	return pdftest.TemplatePDF(t, label, pages)
}

func templateFS(t *testing.T) afero.Fs {
	return pdftest.TemplateFS(t)
}

func newTestService(t *testing.T, fs afero.Fs, opts Options) *Service {
	t.Helper()

	svc, err := NewService(NewTemplateStore(fs, 10*1024*1024), forms.Default(), opts)
	require.NoError(t, err)
	return svc
}

// pageText returns the text runs of one page joined by newlines.
func pageText(t *testing.T, data []byte, page int) string {
	t.Helper()

	runs, err := ReadTextRuns(data)
	require.NoError(t, err)

	var lines []string
	for _, r := range runs {
		if r.Page == page {
			lines = append(lines, r.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// pageContent returns the decoded content streams of one page.
func pageContent(t *testing.T, data []byte, page int) string {
	t.Helper()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var b strings.Builder
	read := func(v pdf.Value) {
		rc := v.Reader()
		defer rc.Close()
		_, err := io.Copy(&b, rc)
		require.NoError(t, err)
		b.WriteByte('\n')
	}

	contents := r.Page(page).V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			read(contents.Index(i))
		}
	} else {
		read(contents)
	}
	return b.String()
}
