package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"", French, false},
		{"fr", French, false},
		{"NL", Dutch, false},
		{" nl ", Dutch, false},
		{"de", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplate_Variant(t *testing.T) {
	c := Default()
	seppt, _ := c.Lookup("seppt")
	employer, _ := c.Lookup("employer")

	v, lang, err := seppt.Variant(Dutch)
	require.NoError(t, err)
	assert.Equal(t, Dutch, lang)
	assert.Equal(t, "ATTESTATION_SEPPT_NL.pdf", v.File)
	assert.Equal(t, AttestationDutchOffset, v.OffsetY)

	v, lang, err = seppt.Variant("")
	require.NoError(t, err)
	assert.Equal(t, French, lang)
	assert.Equal(t, "ATTESTATION_SEPPT.pdf", v.File)
	assert.Zero(t, v.OffsetY)

	_, _, err = seppt.Variant("de")
	assert.Error(t, err)

	v, lang, err = employer.Variant(Dutch)
	require.NoError(t, err)
	assert.Equal(t, French, lang)
	assert.Equal(t, "FICHE_RENSEIGNEMENTS_EMPLOYEUR_FR_2020.pdf", v.File)

	assert.True(t, seppt.Bilingual())
	assert.False(t, employer.Bilingual())
	assert.Equal(t, []Language{French, Dutch}, seppt.Languages())
}

func TestTemplate_EntryName(t *testing.T) {
	c := Default()
	seppt, _ := c.Lookup("seppt")
	employer, _ := c.Lookup("employer")

	assert.Equal(t, "04_Attestation_SEPPT.pdf", seppt.EntryName(French))
	assert.Equal(t, "04_Attestation_SEPPT_NL.pdf", seppt.EntryName(Dutch))
	assert.Equal(t, "01_Fiche_Employeur.pdf", employer.EntryName(Dutch))
}

func TestTemplate_LayoutFor(t *testing.T) {
	tpl := &Template{
		Pages: map[int]Layout{
			0:  {Fields: []Field{text("first", 1, 1)}},
			2:  {Fields: []Field{text("third", 1, 1)}},
			-1: {Fields: []Field{text("last", 1, 1)}},
		},
	}

	tests := []struct {
		name  string
		index int
		count int
		want  []string
	}{
		{"first page", 0, 5, []string{"first"}},
		{"static page", 1, 5, nil},
		{"last page", 4, 5, []string{"last"}},
		{"third is last", 2, 3, []string{"third", "last"}},
		{"single page", 0, 1, []string{"first", "last"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, f := range tpl.LayoutFor(tt.index, tt.count).Fields {
				keys = append(keys, f.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}

	assert.Equal(t, []int{2}, tpl.Unreachable(2))
	assert.Empty(t, tpl.Unreachable(3))
	assert.Equal(t, []int{-1, 0, 2}, tpl.Unreachable(0))
}

func TestTemplate_Keys(t *testing.T) {
	tpl, _ := Default().Lookup("seppt")
	keys := tpl.Keys()

	assert.Contains(t, keys, "adresse_1")
	assert.Contains(t, keys, "adresse_siege_social_1")
	assert.Contains(t, keys, "nom_prenom_gerant")
	assert.NotContains(t, keys, "recu_par")
}
