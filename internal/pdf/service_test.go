package pdf

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
)

func TestNewService_Validation(t *testing.T) {
	store := NewTemplateStore(afero.NewMemMapFs(), 1024)

	_, err := NewService(nil, forms.Default(), Options{})
	assert.Error(t, err)

	_, err = NewService(store, nil, Options{})
	assert.Error(t, err)

	_, err = NewService(store, forms.Default(), Options{Companions: map[string][]string{"nope": {"a.pdf"}}})
	assert.Error(t, err)

	svc, err := NewService(store, forms.Default(), Options{Workers: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.GetWorkers())
	assert.Equal(t, int64(1024), svc.GetMaxFileSize())
}

func TestService_Generate_PageCountPreserved(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	values := forms.Values{
		"nom_societe":       forms.Text("ACME SRL"),
		"nom_prenom_gerant": forms.Text("Jean Dupont"),
		"date_signature":    forms.Text("01/02/2025"),
	}

	for _, id := range forms.Default().IDs() {
		t.Run(id, func(t *testing.T) {
			res, err := svc.Generate(GenerateRequest{Document: id, Values: values})
			require.NoError(t, err)
			assert.Equal(t, fixturePages[id], res.Pages)

			count, err := NewMerger().PageCount(bytes.NewReader(res.Data))
			require.NoError(t, err)
			assert.Equal(t, fixturePages[id], count)
		})
	}
}

func TestService_Generate_EmployerScenario(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	req := GenerateRequest{
		Document: "employer",
		Values:   forms.FromMap(map[string]any{"recu_par": "Marie Dubois", "forme_juridique": "SRL"}),
	}

	res, err := svc.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, res.Placements)
	assert.Equal(t, "01_Fiche_Employeur.pdf", res.EntryName)

	overlay, err := svc.RenderOverlay(req)
	require.NoError(t, err)
	runs, err := ReadTextRuns(overlay.Data)
	require.NoError(t, err)

	names := FindRuns(runs, 1, "Marie Dubois")
	require.Len(t, names, 1)
	assert.Greater(t, names[0].Y, overlay.Pages[0].Height*0.75)

	marks := FindRuns(runs, 1, forms.MarkGlyph)
	require.Len(t, marks, 1)

	tpl, _ := forms.Default().Lookup("employer")
	m := NewMapper(tpl.Source, overlay.Pages[0].Width, overlay.Pages[0].Height, tpl.Convention)
	srl := m.ToPoints(forms.Point{X: 195, Y: 235})
	assert.InDelta(t, srl.X, marks[0].X, 0.1)
	assert.InDelta(t, srl.Y, marks[0].Y, 0.1)

	for _, other := range []forms.Point{{X: 240, Y: 235}, {X: 285, Y: 235}, {X: 345, Y: 235}, {X: 415, Y: 235}} {
		p := m.ToPoints(other)
		assert.Greater(t, abs(p.X-marks[0].X), 10.0)
	}

	assert.Empty(t, FindRuns(runs, 2, forms.MarkGlyph))
}

func TestService_Generate_OmitsEmptyValues(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	req := GenerateRequest{
		Document: "worker",
		Values: forms.FromMap(map[string]any{
			"nom_employeur":          "",
			"nom_prenom_travailleur": "Anne Peeters",
			"nationalite":            nil,
			"nombre_enfants":         float64(0),
			"date_sortie":            false,
		}),
	}

	overlay, err := svc.RenderOverlay(req)
	require.NoError(t, err)

	runs, err := ReadTextRuns(overlay.Data)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Anne Peeters", runs[0].Text)
}

func TestService_Generate_PassThroughPages(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})

	res, err := svc.Generate(GenerateRequest{
		Document: "obligations",
		Values:   forms.Values{"date_signature": forms.Text("01/02/2025")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Pages)

	for page := 1; page <= 3; page++ {
		assert.Contains(t, pageText(t, res.Data, page), "FR obligations PAGE "+string(rune('0'+page)))
	}
	assert.NotContains(t, pageContent(t, res.Data, 1), " Do")
	assert.NotContains(t, pageContent(t, res.Data, 2), " Do")
	assert.Contains(t, pageContent(t, res.Data, 3), " Do")

	overlay, err := svc.RenderOverlay(GenerateRequest{
		Document: "obligations",
		Values:   forms.Values{"date_signature": forms.Text("01/02/2025")},
	})
	require.NoError(t, err)
	assert.Empty(t, overlay.Pages[0].Placements)
	assert.Empty(t, overlay.Pages[1].Placements)
	assert.Len(t, overlay.Pages[2].Placements, 1)
}

func TestService_Generate_Idempotent(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	req := GenerateRequest{
		Document: "procuration",
		Values:   forms.Values{"nom_societe": forms.Text("ACME SRL"), "adresse_siege_social_1": forms.Text("Rue Haute 1, 1000 Bruxelles")},
	}

	first, err := svc.RenderOverlay(req)
	require.NoError(t, err)
	second, err := svc.RenderOverlay(req)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)

	a, err := svc.Generate(req)
	require.NoError(t, err)
	// the second fill lands in a later second than the first
	time.Sleep(time.Until(time.Now().Truncate(time.Second).Add(1100 * time.Millisecond)))
	b, err := svc.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestService_RenderOverlay_ScanTablesDrawAtBaseline(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	overlay, err := svc.RenderOverlay(GenerateRequest{
		Document: "worker",
		Values:   forms.Values{"nom_prenom_travailleur": forms.Text("Anne Peeters")},
	})
	require.NoError(t, err)

	page := overlay.Pages[0]
	require.Len(t, page.Placements, 1)
	at := page.Placements[0].At
	assert.InDelta(t, 440*page.Width/1241, at.X, 1e-9)
	assert.InDelta(t, page.Height-375*page.Height/1754, at.Y, 1e-9)
}

func TestService_Generate_ProcurationDefaults(t *testing.T) {
	values := forms.Values{"nom_societe": forms.Text("ACME SRL"), "adresse_siege_social_1": forms.Text("Rue Haute 1, 1000 Bruxelles")}

	svc := newTestService(t, templateFS(t), Options{})
	overlay, err := svc.RenderOverlay(GenerateRequest{Document: "procuration", Values: values})
	require.NoError(t, err)
	text := pageText(t, overlay.Data, 1)
	assert.Contains(t, text, forms.DefaultProviderNumber)
	assert.Contains(t, text, forms.DefaultProviderName)
	assert.Contains(t, text, "Rue Haute 1")
	assert.NotContains(t, text, "1000 Bruxelles")

	svc = newTestService(t, templateFS(t), Options{Defaults: forms.Values{"prestataire_nom": forms.Text("OTHER SRL")}})
	overlay, err = svc.RenderOverlay(GenerateRequest{Document: "procuration", Values: values})
	require.NoError(t, err)
	text = pageText(t, overlay.Data, 1)
	assert.Contains(t, text, "OTHER SRL")
	assert.NotContains(t, text, forms.DefaultProviderName)
}

func TestService_Generate_Language(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	values := forms.Values{"nom_societe": forms.Text("ACME SRL")}

	fr, err := svc.RenderOverlay(GenerateRequest{Document: "seppt", Values: values})
	require.NoError(t, err)
	nl, err := svc.RenderOverlay(GenerateRequest{Document: "seppt", Values: values, Language: "nl"})
	require.NoError(t, err)

	assert.Equal(t, "ATTESTATION_SEPPT.pdf", fr.Template)
	assert.Equal(t, "ATTESTATION_SEPPT_NL.pdf", nl.Template)
	assert.Equal(t, forms.Dutch, nl.Language)

	frY := fr.Pages[0].Placements[0].At.Y
	nlY := nl.Pages[0].Placements[0].At.Y
	m := NewMapper(forms.Scan150, fr.Pages[0].Width, fr.Pages[0].Height, forms.Baseline)
	assert.InDelta(t, forms.AttestationDutchOffset*m.ScaleY(), frY-nlY, 1e-6)

	res, err := svc.Generate(GenerateRequest{Document: "seppt", Values: values, Language: "nl"})
	require.NoError(t, err)
	assert.Equal(t, "04_Attestation_SEPPT_NL.pdf", res.EntryName)
	assert.Contains(t, pageText(t, res.Data, 1), "NL seppt PAGE 1")

	_, err = svc.Generate(GenerateRequest{Document: "seppt", Values: values, Language: "de"})
	assert.True(t, pdferrors.IsInput(err))

	res, err = svc.Generate(GenerateRequest{Document: "employer", Values: values, Language: "nl"})
	require.NoError(t, err)
	assert.Equal(t, forms.French, res.Language)
}

func TestService_Generate_Errors(t *testing.T) {
	fs := templateFS(t)
	require.NoError(t, fs.Remove("PROCURATION.pdf"))
	require.NoError(t, afero.WriteFile(fs, "FOR140106_FR.pdf", []byte("%PDF-1.4 not really"), 0o644))
	svc := newTestService(t, fs, Options{})
	values := forms.Values{"nom_societe": forms.Text("ACME")}

	tests := []struct {
		name     string
		req      GenerateRequest
		wantType pdferrors.ErrorType
	}{
		{"unknown document", GenerateRequest{Document: "nonexistent", Values: values}, pdferrors.ErrorTypeUnknownDocument},
		{"no values", GenerateRequest{Document: "employer"}, pdferrors.ErrorTypeInput},
		{"missing template", GenerateRequest{Document: "procuration", Values: values}, pdferrors.ErrorTypeConfiguration},
		{"corrupt template", GenerateRequest{Document: "mensura", Values: values}, pdferrors.ErrorTypeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Generate(tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantType, pdferrors.TypeOf(err))
		})
	}
}

func TestService_GenerateBatch(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{})
	values := forms.Values{"recu_par": forms.Text("Marie Dubois"), "nom_societe": forms.Text("ACME")}

	res, err := svc.GenerateBatch(BatchRequest{Documents: []string{"employer", "nonexistent_type"}, Values: values})
	require.NoError(t, err)
	assert.Equal(t, []string{"01_Fiche_Employeur.pdf"}, zipNames(t, res.Archive))
	assert.Equal(t, []string{"employer"}, res.Generated)
	require.Len(t, res.Omitted, 1)
	assert.Equal(t, "nonexistent_type", res.Omitted[0].Document)
	assert.Equal(t, pdferrors.ErrorTypeUnknownDocument, res.Omitted[0].Type)
}

func TestService_GenerateBatch_OrderAndCompanions(t *testing.T) {
	for _, workers := range []int{1, 4} {
		svc := newTestService(t, templateFS(t), Options{Workers: workers})
		values := forms.Values{"nom_societe": forms.Text("ACME")}

		res, err := svc.GenerateBatch(BatchRequest{
			Documents: []string{"mensura", "seppt", "employer", "mensura", "obligations"},
			Values:    values,
			Languages: map[string]string{"seppt": "nl"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"08_Contrat_Mensura.pdf",
			"Conditions_Generales_Mensura.pdf",
			"04_Attestation_SEPPT_NL.pdf",
			"01_Fiche_Employeur.pdf",
			"09_Obligations_Employeur.pdf",
		}, zipNames(t, res.Archive), "workers=%d", workers)
		assert.Equal(t, []string{"Conditions_Generales_Mensura.pdf"}, res.Companions)
	}
}

func TestService_GenerateBatch_CompanionOverrides(t *testing.T) {
	fs := templateFS(t)
	require.NoError(t, afero.WriteFile(fs, "notice.pdf", templatePDF(t, "NOTICE", 1), 0o644))
	svc := newTestService(t, fs, Options{Companions: map[string][]string{
		"mensura":     {},
		"procuration": {"notice.pdf", "missing.pdf"},
		"seppt":       {"notice.pdf"},
	}})

	res, err := svc.GenerateBatch(BatchRequest{
		Documents: []string{"mensura", "procuration", "seppt"},
		Values:    forms.Values{"nom_societe": forms.Text("ACME")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"08_Contrat_Mensura.pdf",
		"07_Procuration_ONSS.pdf",
		"notice.pdf",
		"04_Attestation_SEPPT.pdf",
	}, zipNames(t, res.Archive))
	assert.Empty(t, res.Omitted)
}

func TestService_GenerateBatch_CompanionEntryNames(t *testing.T) {
	fs := templateFS(t)
	for _, name := range []string{"a/notice.pdf", "b/notice.pdf", "07_Procuration_ONSS.pdf"} {
		require.NoError(t, fs.MkdirAll(path.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fs, name, templatePDF(t, "NOTICE", 1), 0o644))
	}
	svc := newTestService(t, fs, Options{Companions: map[string][]string{
		"procuration": {"a/notice.pdf", "b/notice.pdf", "07_Procuration_ONSS.pdf"},
	}})

	res, err := svc.GenerateBatch(BatchRequest{
		Documents: []string{"procuration"},
		Values:    forms.Values{"nom_societe": forms.Text("ACME")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"07_Procuration_ONSS.pdf",
		"notice.pdf",
		"b/notice.pdf",
	}, zipNames(t, res.Archive))
	assert.Equal(t, []string{"a/notice.pdf", "b/notice.pdf"}, res.Companions)
}

func TestCompanionEntry(t *testing.T) {
	tests := []struct {
		name string
		used map[string]bool
		want string
	}{
		{"docs/notice.pdf", nil, "notice.pdf"},
		{"docs/notice.pdf", map[string]bool{"notice.pdf": true}, "docs/notice.pdf"},
		{"notice.pdf", map[string]bool{"notice.pdf": true}, ""},
		{"docs/./notice.pdf", map[string]bool{"notice.pdf": true}, "docs/notice.pdf"},
	}

	for _, tt := range tests {
		if got := companionEntry(tt.name, tt.used); got != tt.want {
			t.Errorf("companionEntry(%q, %v) = %q, want %q", tt.name, tt.used, got, tt.want)
		}
	}
}

func TestService_GenerateBatch_Rejects(t *testing.T) {
	fs := templateFS(t)
	require.NoError(t, fs.Remove("FICHE_RENSEIGNEMENTS_EMPLOYEUR_FR_2020.pdf"))
	svc := newTestService(t, fs, Options{})
	values := forms.Values{"nom_societe": forms.Text("ACME")}

	tests := []struct {
		name     string
		req      BatchRequest
		wantType pdferrors.ErrorType
	}{
		{"no values", BatchRequest{Documents: []string{"worker"}}, pdferrors.ErrorTypeInput},
		{"no documents", BatchRequest{Values: values}, pdferrors.ErrorTypeInput},
		{"only unknown", BatchRequest{Documents: []string{"a", "b"}, Values: values}, pdferrors.ErrorTypeUnknownDocument},
		{"only missing template", BatchRequest{Documents: []string{"employer"}, Values: values}, pdferrors.ErrorTypeConfiguration},
		{"mixed failures", BatchRequest{Documents: []string{"employer", "a"}, Values: values}, pdferrors.ErrorTypeRendering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GenerateBatch(tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantType, pdferrors.TypeOf(err))
		})
	}
}

func TestService_CheckTemplates(t *testing.T) {
	fs := templateFS(t)
	require.NoError(t, fs.Remove("ATTESTATION_SEPPT_NL.pdf"))
	svc := newTestService(t, fs, Options{})

	report := svc.CheckTemplates()
	assert.False(t, report.Healthy())
	assert.Equal(t, 1, report.Missing)
	assert.Equal(t, "memory", report.Directory)

	var sawCompanion bool
	for _, s := range report.Templates {
		switch {
		case s.File == "ATTESTATION_SEPPT_NL.pdf":
			assert.False(t, s.Available)
			assert.Equal(t, forms.Dutch, s.Language)
			assert.Contains(t, s.Error, "not found")
		case s.Companion:
			sawCompanion = true
			assert.True(t, s.Available)
		default:
			assert.True(t, s.Available, s.File)
			assert.Equal(t, fixturePages[s.Document], s.Pages, s.File)
		}
	}
	assert.True(t, sawCompanion)
	assert.Same(t, report, svc.TemplateReport())

	// a failed template read drops the cached report
	_, err := svc.Generate(GenerateRequest{Document: "seppt", Language: "nl", Values: forms.Values{"nom": forms.Text("x")}})
	require.Error(t, err)
	assert.NotSame(t, report, svc.TemplateReport())
}

func TestService_Documents(t *testing.T) {
	svc := newTestService(t, afero.NewMemMapFs(), Options{})
	docs := svc.Documents()

	require.Len(t, docs, 9)
	assert.Equal(t, "employer", docs[0].ID)
	assert.Contains(t, docs[0].Keys, "forme_juridique")
	assert.Equal(t, []forms.Language{forms.French, forms.Dutch}, docs[3].Languages)
	assert.Equal(t, []string{"Conditions_Generales_Mensura.pdf"}, docs[7].Companions)

	info := svc.ServerInfo("mcp-pdf-filler", "test")
	assert.Len(t, info.AvailableTools, 4)
	assert.Contains(t, info.UsageGuidance, "form_fill_batch")
	assert.Equal(t, 11+1, len(info.Templates.Templates))
}

func zipNames(t *testing.T, archive []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(data), "%PDF-"), f.Name)
		names = append(names, f.Name)
	}
	return names
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestService_DefaultLanguage(t *testing.T) {
	svc := newTestService(t, templateFS(t), Options{Language: forms.Dutch})
	values := forms.Values{"nom_societe": forms.Text("ACME")}

	res, err := svc.Generate(GenerateRequest{Document: "accident", Values: values})
	require.NoError(t, err)
	assert.Equal(t, forms.Dutch, res.Language)
	assert.Equal(t, "ATTESTATION_ASSURANCE_ACCIDENT_DE_TRAVAIL_NL.pdf", res.Template)

	res, err = svc.Generate(GenerateRequest{Document: "accident", Values: values, Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, forms.French, res.Language)

	_, err = NewService(NewTemplateStore(afero.NewMemMapFs(), 1024), forms.Default(), Options{Language: "de"})
	assert.Error(t, err)
}
