package schema

// Default returns the built-in diabetes and blood pressure schema used when no
// schema file is configured.
func Default() Schema {
	return Schema{
		Name: "diabetes-bp",
		Fields: []Field{
			{
				Name:        "diabetes",
				Kind:        KindBool,
				Description: "Whether diabetes mellitus is documented as a diagnosis for the patient.",
			},
			{
				Name: "diabetes_type",
				Kind: KindEnum,
				Values: []string{
					"Type 1 diabetes mellitus",
					"Type 2 diabetes mellitus",
					"Gestational diabetes",
					"Unspecified diabetes",
				},
				Description: "Documented diabetes type, exactly as one of the allowed values.",
			},
			{
				Name:        "diabetes_status",
				Kind:        KindEnum,
				Values:      []string{"active", "historical", "family history"},
				Description: "Whether the diabetes diagnosis is active, historical, or family history.",
			},
			{
				Name:        "a1c_values",
				Kind:        KindList,
				Description: "A1C values with units exactly as written in the note (e.g. '7.2%').",
			},
			{
				Name:        "glucose_values",
				Kind:        KindList,
				Description: "Glucose levels with units exactly as written (e.g. '142 mg/dL').",
			},
			{
				Name:        "diabetes_medications",
				Kind:        KindList,
				Description: "Insulin and oral hypoglycemics with exact dosages (e.g. 'metformin 500 mg PO BID').",
			},
			{
				Name:        "hypertension_status",
				Kind:        KindEnum,
				Values:      []string{"active", "historical", "hypertensive urgency", "hypertensive emergency"},
				Description: "Hypertension diagnosis status, including urgency/emergency when documented.",
			},
			{
				Name:        "bp_readings",
				Kind:        KindList,
				Description: "Blood pressure readings exactly as written (e.g. '150/95 mmHg').",
			},
			{
				Name:         "bp_systolic",
				Kind:         KindNumeric,
				AbsTolerance: 5,
				Description:  "Most recent systolic blood pressure in mmHg.",
			},
			{
				Name:         "bp_diastolic",
				Kind:         KindNumeric,
				AbsTolerance: 5,
				Description:  "Most recent diastolic blood pressure in mmHg.",
			},
			{
				Name:        "bp_medications",
				Kind:        KindList,
				Description: "Antihypertensive medications with exact dosages.",
			},
			{
				Name:        "abnormal_markers",
				Kind:        KindList,
				Description: "Any abnormal lab markers mentioned in the note.",
			},
		},
	}
}
