package pdf

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stampDescription places each overlay page unscaled over the page of the
// same number.
const stampDescription = "scalefactor:1 abs, rotation:0, opacity:1"

var disableConfigDir sync.Once

var (
	infoDate = regexp.MustCompile(`\(D:[0-9]{14}[^)]*\)`)
	fileID   = regexp.MustCompile(`/ID\s*\[\s*<([0-9A-Fa-f]*)>\s*<([0-9A-Fa-f]*)>\s*\]`)
)

// Merger composites overlay pages onto template pages with pdfcpu.
type Merger struct{}

// NewMerger creates a merger. pdfcpu's user configuration directory is
// disabled so a server never writes into its home directory.
func NewMerger() *Merger {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Merger{}
}

// config returns a fresh configuration; pdfcpu records the running command
// in it, so it is never shared between calls. Object and xref streams are
// off so the info dictionary and trailer stay plain text for pinMetadata.
func (m *Merger) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// PageSizes returns the media size of every page of a PDF.
func (m *Merger) PageSizes(rs io.ReadSeeker) ([]types.Dim, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ctx, err := api.ReadContext(rs, m.config())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page sizes: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	return dims, nil
}

// PageCount returns the number of pages of a PDF.
func (m *Merger) PageCount(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return api.PageCount(rs, m.config())
}

// Merge writes template to w with overlay page n drawn on top of template
// page n for every n in pages (1-based). Other pages pass through.
func (m *Merger) Merge(template, overlay io.ReadSeeker, pages []int, w io.Writer) error {
	if _, err := template.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if len(pages) == 0 {
		_, err := io.Copy(w, template)
		return err
	}

	if _, err := overlay.Seek(0, io.SeekStart); err != nil {
		return err
	}

	wm, err := api.PDFMultiWatermarkForReadSeeker(overlay, 1, 1, stampDescription, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to prepare overlay stamp: %w", err)
	}

	selected := make([]string, 0, len(pages))
	for _, p := range pages {
		selected = append(selected, strconv.Itoa(p))
	}

	var buf bytes.Buffer
	if err := api.AddWatermarks(template, &buf, selected, wm, m.config()); err != nil {
		return fmt.Errorf("failed to merge overlay: %w", err)
	}

	_, err = w.Write(pinMetadata(buf.Bytes()))
	return err
}

// pinMetadata replaces the dates and the file identifier pdfcpu writes on
// every save with values derived from the document itself. Replacements
// keep their length so xref offsets stay valid.
func pinMetadata(data []byte) []byte {
	epoch := overlayEpoch.Format("20060102150405")
	out := infoDate.ReplaceAllFunc(data, func(m []byte) []byte {
		d := append([]byte(nil), m...)
		copy(d[3:], epoch)
		for i := 3 + len(epoch); i < len(d)-1; i++ {
			switch {
			case d[i] >= '0' && d[i] <= '9':
				d[i] = '0'
			case d[i] == '-':
				d[i] = '+'
			}
		}
		return d
	})

	ids := fileID.FindAllSubmatchIndex(out, -1)
	if len(ids) == 0 {
		return out
	}
	for _, loc := range ids {
		for g := 1; g <= 2; g++ {
			for i := loc[2*g]; i < loc[2*g+1]; i++ {
				out[i] = '0'
			}
		}
	}

	sum := md5.Sum(out)
	digest := hex.EncodeToString(sum[:])
	for _, loc := range ids {
		for g := 1; g <= 2; g++ {
			for i := loc[2*g]; i < loc[2*g+1]; i++ {
				out[i] = digest[(i-loc[2*g])%len(digest)]
			}
		}
	}
	return out
}
