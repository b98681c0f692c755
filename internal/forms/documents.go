package forms

// Default field positions, measured on the template files shipped with the
// service. They are calibration data: re-measure with pdf_calibrate when a
// template file is replaced.

// AttestationDutchOffset shifts the attestation fields on the Dutch editions,
// whose header block is taller.
const AttestationDutchOffset = 30.0

func text(key string, x, y float64, fallback ...string) Field {
	return Field{Key: key, Fallback: fallback, At: Point{X: x, Y: y}}
}

func sized(key string, x, y, size float64) Field {
	return Field{Key: key, At: Point{X: x, Y: y}, Size: size}
}

func crosses(key string, options map[string]Point) Group {
	return Group{Key: key, Size: MarkFontSize, Mark: MarkCross, Options: options}
}

// circles draws a ring around the chosen option. The worker and independent
// civilite groups use it where the printed forms have no box to cross; both
// still need confirming against the current template files.
func circles(key string, options map[string]Point) Group {
	return Group{Key: key, Mark: MarkCircle, Options: options}
}

// weekSchedule lays out the employer's weekly timetable grid.
func weekSchedule() []Field {
	days := []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche"}
	columns := []struct {
		suffix string
		x      float64
	}{
		{"_matin_de", 200}, {"_matin_a", 255},
		{"_pause_de", 372}, {"_pause_a", 427},
		{"_apres_de", 572}, {"_apres_a", 627},
	}
	fields := make([]Field, 0, len(days)*len(columns))
	for i, day := range days {
		y := 224 + float64(i)*19
		for _, c := range columns {
			fields = append(fields, sized(day+c.suffix, c.x, y, 9))
		}
	}
	return fields
}

func employer() *Template {
	page2 := []Field{text("regime_horaire", 255, 146)}
	page2 = append(page2, weekSchedule()...)
	page2 = append(page2,
		text("cameras", 430, 365),
		text("trousse_secours", 410, 415),
		text("primes", 380, 514),
		text("secretariat_actuel", 310, 547),
		text("nom_comptable", 265, 580),
		text("coord_comptable", 330, 613),
		text("date_signature", 160, 846),
	)

	return &Template{
		ID:         "employer",
		Title:      "Fiche de renseignements employeur",
		Entry:      "01_Fiche_Employeur.pdf",
		Download:   "Employer",
		Source:     Legacy707,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "FICHE_RENSEIGNEMENTS_EMPLOYEUR_FR_2020.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("recu_par", 185, 197),
					text("nom_societe", 300, 275),
					text("nom_prenom_gerant", 335, 308),
					text("niss_gerant", 240, 340),
					text("adresse_siege_social_1", 325, 373),
					text("adresse_siege_social_2", 325, 390),
					text("adresse_exploitation_1", 325, 423),
					text("adresse_exploitation_2", 325, 440),
					text("telephone_gsm", 260, 505),
					text("email", 245, 538),
					text("num_entreprise", 280, 571),
					text("num_onss", 240, 604),
					text("assurance_loi", 360, 637),
					text("seppt", 180, 670),
					text("secteur_activite", 265, 703),
					text("commission_paritaire", 295, 803),
					text("indice_onss", 220, 836),
					text("code_nace", 210, 869),
				},
				Groups: []Group{
					crosses("forme_juridique", map[string]Point{
						"SRL":               {195, 235},
						"SC":                {240, 235},
						"SA":                {285, 235},
						"ASBL":              {345, 235},
						"PERSONNE PHYSIQUE": {415, 235},
					}),
					crosses("reduction_premier", map[string]Point{
						"Oui":     {75, 768},
						"Non":     {112, 768},
						"Enquete": {157, 768},
					}),
					crosses("salaire_garanti", map[string]Point{
						"OUI": {640, 900},
						"NON": {677, 900},
					}),
				},
			},
			1: {
				Fields: page2,
				Groups: []Group{
					crosses("vetements_fourniture", map[string]Point{
						"Oui": {442, 448},
						"Non": {479, 448},
					}),
					crosses("vetements_entretien", map[string]Point{
						"Oui": {442, 481},
						"Non": {479, 481},
					}),
					crosses("origine", map[string]Point{
						"Internet":  {145, 662},
						"Comptable": {341, 662},
						"Client":    {145, 696},
						"Autre":     {341, 696},
					}),
				},
			},
		},
	}
}

func worker() *Template {
	return &Template{
		ID:         "worker",
		Title:      "Fiche de renseignements travailleur",
		Entry:      "02_Fiche_Travailleur.pdf",
		Download:   "Worker",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "FICHE_RENSEIGNEMENTS_TRAVAILLEUR_FR.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("nom_employeur", 440, 264, "nom_societe"),
					text("nom_prenom_travailleur", 440, 375),
					text("adresse_travailleur_1", 440, 410),
					text("adresse_travailleur_2", 440, 430),
					text("date_naissance", 440, 480),
					text("niss_travailleur", 440, 515),
					text("nationalite", 440, 550),
					text("nombre_enfants", 770, 785),
					text("nombre_enfants_handicapes", 770, 805),
					text("date_entree", 320, 875),
					text("date_sortie", 670, 875),
					text("fonction", 440, 955),
				},
				Groups: []Group{
					circles("civilite", map[string]Point{
						"Mr":    {175, 335},
						"Mme":   {365, 335},
						"Melle": {595, 335},
					}),
					crosses("etat_civil", map[string]Point{
						"Marié(e)":            {365, 670},
						"Célibataire":         {365, 700},
						"Divorcé(e)":          {365, 730},
						"Veuf/veuve":          {620, 670},
						"Séparé(e)":           {620, 700},
						"Cohabitation légale": {620, 730},
					}),
					crosses("categorie_professionnelle", map[string]Point{
						"Employé":           {365, 915},
						"Ouvrier":           {480, 915},
						"Chef d'entreprise": {620, 915},
						"Autre":             {760, 915},
					}),
					crosses("type_contrat", map[string]Point{
						"C.D.D.":           {365, 995},
						"C.D.I.":           {365, 1020},
						"Etudiant":         {365, 1045},
						"Remplacement":     {620, 995},
						"Nettement défini": {620, 1020},
					}),
					crosses("regime_horaire", map[string]Point{
						"Temps plein":   {300, 1090},
						"Temps partiel": {530, 1090},
					}),
				},
			},
			1: {
				Fields: []Field{
					text("heures_semaine", 430, 135),
					text("remuneration", 440, 720),
					text("compte_bancaire", 440, 760),
					text("date_signature", 250, 1280),
				},
				Groups: []Group{
					crosses("horaire_type", map[string]Point{
						"Fixe":     {290, 100},
						"Variable": {480, 100},
					}),
				},
			},
		},
	}
}

func independent() *Template {
	return &Template{
		ID:         "independent",
		Title:      "Fiche de renseignements indépendant",
		Entry:      "03_Fiche_Independant.pdf",
		Download:   "Independent",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "FICHE_RENSEIGNEMENTS_INDEPENDANT.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("nom_prenom_travailleur", 440, 285),
					text("adresse_travailleur_1", 440, 320),
					text("date_naissance", 440, 385),
					text("niss_travailleur", 440, 420),
					text("nationalite", 440, 455),
					text("remuneration", 440, 765),
					text("date_signature", 250, 970),
				},
				Groups: []Group{
					circles("civilite", map[string]Point{
						"Mr":    {175, 250},
						"Mme":   {365, 250},
						"Melle": {595, 250},
					}),
				},
			},
		},
	}
}

// attestationLayout is shared by the SEPPT and work accident insurance
// attestations.
func attestationLayout() map[int]Layout {
	return map[int]Layout{
		0: {
			Fields: []Field{
				text("nom_prenom_signataire", 440, 150, "nom_prenom_gerant"),
				text("niss_gerant", 440, 180),
				text("adresse_1", 440, 215, "adresse_siege_social_1"),
				text("adresse_2", 440, 235, "adresse_siege_social_2"),
				text("qualite_representant", 440, 270),
				text("nom_societe", 440, 305),
				text("lieu_signature", 390, 800),
				text("date_signature", 520, 800),
			},
		},
	}
}

func seppt() *Template {
	return &Template{
		ID:         "seppt",
		Title:      "Attestation SEPPT",
		Entry:      "04_Attestation_SEPPT.pdf",
		Download:   "Attestation_SEPPT",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "ATTESTATION_SEPPT.pdf"},
			Dutch:  {File: "ATTESTATION_SEPPT_NL.pdf", OffsetY: AttestationDutchOffset},
		},
		Pages: attestationLayout(),
	}
}

func accident() *Template {
	return &Template{
		ID:         "accident",
		Title:      "Attestation assurance accident du travail",
		Entry:      "05_Attestation_Accident.pdf",
		Download:   "Attestation_Accident",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "ATTESTATION_ASSURANCE_ACCIDENT_DE_TRAVAIL.pdf"},
			Dutch:  {File: "ATTESTATION_ASSURANCE_ACCIDENT_DE_TRAVAIL_NL.pdf", OffsetY: AttestationDutchOffset},
		},
		Pages: attestationLayout(),
	}
}

func dispense() *Template {
	return &Template{
		ID:         "dispense",
		Title:      "Dispense partielle de versement du précompte professionnel",
		Entry:      "06_Dispense_Precompte.pdf",
		Download:   "Dispense_Precompte",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "Dispense_partielle_de_versement_du_pre_compte_professionnel.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("nom_prenom_signataire", 440, 145, "nom_prenom_gerant"),
					text("nom_societe", 440, 185),
					text("num_entreprise", 440, 210),
				},
			},
			1: {
				Fields: []Field{
					text("lieu_signature", 300, 680),
					text("date_signature", 460, 680),
				},
			},
		},
	}
}

// Provider identity printed on the ONSS procuration when neither the request
// nor the configuration supplies one.
const (
	DefaultProviderNumber = "0479.995.689"
	DefaultProviderName   = "PERSOPROJECT"
)

func procuration() *Template {
	street := text("adresse_1", 440, 320, "adresse_siege_social_1")
	street.Transform = StreetPart

	return &Template{
		ID:         "procuration",
		Title:      "Procuration ONSS",
		Entry:      "07_Procuration_ONSS.pdf",
		Download:   "Procuration_ONSS",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "PROCURATION.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("num_entreprise", 440, 260),
					text("nom_societe", 440, 280),
					street,
					text("num_onss", 440, 385),
					{Key: "prestataire_num_entreprise", Literal: DefaultProviderNumber, At: Point{X: 440, Y: 485}},
					{Key: "prestataire_nom", Literal: DefaultProviderName, At: Point{X: 440, Y: 560}},
					text("date_signature", 300, 920),
					text("nom_prenom_signataire", 440, 980, "nom_prenom_gerant"),
				},
			},
		},
	}
}

func mensura() *Template {
	return &Template{
		ID:         "mensura",
		Title:      "Contrat Mensura",
		Entry:      "08_Contrat_Mensura.pdf",
		Download:   "Contrat_Mensura",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "FOR140106_FR.pdf"},
		},
		Pages: map[int]Layout{
			0: {
				Fields: []Field{
					text("nom_societe", 440, 270),
					text("adresse_1", 440, 320, "adresse_siege_social_1"),
					text("telephone_gsm", 440, 450),
					text("email", 440, 485),
					text("num_entreprise", 440, 520),
					text("num_onss", 615, 520),
				},
			},
			3: {
				Fields: []Field{
					text("date_signature", 400, 620),
					text("nom_prenom_signataire", 400, 670, "nom_prenom_gerant"),
				},
			},
		},
		Companions: []string{"Conditions_Generales_Mensura.pdf"},
	}
}

func obligations() *Template {
	return &Template{
		ID:         "obligations",
		Title:      "Obligations de l'employeur",
		Entry:      "09_Obligations_Employeur.pdf",
		Download:   "Obligations_Employeur",
		Source:     Scan150,
		Convention: Baseline,
		Variants: map[Language]Variant{
			French: {File: "Obligation_Employeur_2025.pdf"},
		},
		Pages: map[int]Layout{
			-1: {
				Fields: []Field{
					text("date_signature", 250, 720),
				},
			},
		},
	}
}
