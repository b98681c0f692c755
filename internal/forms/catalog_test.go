package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Documents(t *testing.T) {
	c := Default()

	want := []string{"employer", "worker", "independent", "seppt", "accident", "dispense", "procuration", "mensura", "obligations"}
	assert.Equal(t, want, c.IDs())

	for _, tpl := range c.Templates() {
		assert.NotEmpty(t, tpl.Entry, tpl.ID)
		assert.NotEmpty(t, tpl.Download, tpl.ID)
		assert.NotEmpty(t, tpl.Title, tpl.ID)
	}

	_, ok := c.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestDefault_PositionsInsideSource(t *testing.T) {
	for _, tpl := range Default().Templates() {
		maxOffset := 0.0
		for _, v := range tpl.Variants {
			if v.OffsetY > maxOffset {
				maxOffset = v.OffsetY
			}
		}
		check := func(key string, p Point) {
			if p.X < 0 || p.X > tpl.Source.Width || p.Y < 0 || p.Y+maxOffset > tpl.Source.Height {
				t.Errorf("%s/%s at %+v outside %+v", tpl.ID, key, p, tpl.Source)
			}
		}
		for _, layout := range tpl.Pages {
			for _, f := range layout.Fields {
				check(f.Key, f.At)
			}
			for _, g := range layout.Groups {
				for opt, p := range g.Options {
					check(g.Key+"="+opt, p)
				}
			}
		}
	}
}

func TestDefault_SourceResolutions(t *testing.T) {
	c := Default()

	employer, _ := c.Lookup("employer")
	assert.Equal(t, Legacy707, employer.Source)
	assert.Equal(t, Baseline, employer.Convention)

	for _, id := range []string{"worker", "independent", "seppt", "accident", "dispense", "procuration", "mensura", "obligations"} {
		tpl, ok := c.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, Scan150, tpl.Source, id)
		assert.Equal(t, Baseline, tpl.Convention, id)
	}
}

func TestDefault_Fallbacks(t *testing.T) {
	c := Default()
	values := Values{
		"adresse_siege_social_1": Text("Rue de la Loi 16, 1000 Bruxelles"),
		"adresse_siege_social_2": Text("1000 Bruxelles"),
		"nom_societe":            Text("ACME SRL"),
		"nom_prenom_gerant":      Text("Jean Dupont"),
	}

	texts := func(id string, page, count int) map[string]string {
		tpl, _ := c.Lookup(id)
		out := map[string]string{}
		for _, it := range tpl.LayoutFor(page, count).Resolve(values, 0) {
			out[it.Key] = it.Text
		}
		return out
	}

	seppt := texts("seppt", 0, 1)
	assert.Equal(t, "Rue de la Loi 16, 1000 Bruxelles", seppt["adresse_1"])
	assert.Equal(t, "1000 Bruxelles", seppt["adresse_2"])
	assert.Equal(t, "Jean Dupont", seppt["nom_prenom_signataire"])

	worker := texts("worker", 0, 2)
	assert.Equal(t, "ACME SRL", worker["nom_employeur"])

	procuration := texts("procuration", 0, 1)
	assert.Equal(t, "Rue de la Loi 16", procuration["adresse_1"])
	assert.Equal(t, DefaultProviderNumber, procuration["prestataire_num_entreprise"])
	assert.Equal(t, DefaultProviderName, procuration["prestataire_nom"])

	mensura := texts("mensura", 3, 4)
	assert.Equal(t, "Jean Dupont", mensura["nom_prenom_signataire"])
}

func TestDefault_EmployerSchedule(t *testing.T) {
	tpl, _ := Default().Lookup("employer")
	items := tpl.LayoutFor(1, 2).Resolve(Values{"mercredi_pause_a": Text("13:30")}, 0)

	require.Len(t, items, 1)
	assert.Equal(t, Point{X: 427, Y: 262}, items[0].At)
	assert.Equal(t, 9.0, items[0].Size)
}

func TestDefault_Files(t *testing.T) {
	files := Default().Files()
	assert.Contains(t, files, "ATTESTATION_SEPPT_NL.pdf")
	assert.Contains(t, files, "FICHE_RENSEIGNEMENTS_EMPLOYEUR_FR_2020.pdf")
	assert.Len(t, files, 11)
}

func TestNewCatalog_Rejects(t *testing.T) {
	fr := map[Language]Variant{French: {File: "a.pdf"}}

	_, err := NewCatalog(&Template{ID: "a", Variants: fr}, &Template{ID: "a", Variants: fr})
	assert.Error(t, err)

	_, err = NewCatalog(&Template{Variants: fr})
	assert.Error(t, err)

	_, err = NewCatalog(&Template{ID: "nl-only", Variants: map[Language]Variant{Dutch: {File: "b.pdf"}}})
	assert.Error(t, err)
}

func TestDefault_CiviliteGroupsUseCircles(t *testing.T) {
	c := Default()
	for _, id := range []string{"worker", "independent"} {
		tpl, ok := c.Lookup(id)
		require.True(t, ok, id)

		var found bool
		for _, layout := range tpl.Pages {
			for _, g := range layout.Groups {
				if g.Key == "civilite" {
					found = true
					assert.Equal(t, MarkCircle, g.Mark, id)
					assert.Len(t, g.Options, 3, id)
				}
			}
		}
		assert.True(t, found, id)
	}
}
