package domain

// ProfileTable maps each known disease label to its canonical defining
// symptom set. It is supplied once at engine construction and read-only
// afterwards; the fallback matcher scores queries against it.
type ProfileTable map[string]SymptomSet

// Normalize returns a copy of the table with every symptom set in
// canonical form. The engine normalizes once at construction so fallback
// scoring never re-normalizes per query.
func (t ProfileTable) Normalize() ProfileTable {
	out := make(ProfileTable, len(t))
	for disease, symptoms := range t {
		out[disease] = symptoms.Normalize()
	}
	return out
}

// DefaultDiseaseProfiles returns the built-in reference table of common
// conditions and their defining symptoms.
func DefaultDiseaseProfiles() ProfileTable {
	return ProfileTable{
		"Common Cold":       {"runny_nose", "cough", "sore_throat", "fatigue"},
		"Flu":               {"fever", "cough", "body_ache", "fatigue", "headache"},
		"Stomach Flu":       {"nausea", "vomiting", "diarrhea", "fever", "loss_of_appetite"},
		"Migraine":          {"headache", "nausea", "dizziness"},
		"Tonsillitis":       {"sore_throat", "fever", "headache", "loss_of_appetite"},
		"Chickenpox":        {"rash", "fever", "fatigue", "loss_of_appetite"},
		"Pneumonia":         {"cough", "fever", "shortness_of_breath", "chest_pain", "fatigue"},
		"Allergic Reaction": {"rash", "runny_nose", "shortness_of_breath"},
	}
}

// SymptomDisplayNames maps canonical symptom codes to human-readable names
// for intake UIs and reports.
func SymptomDisplayNames() map[string]string {
	return map[string]string{
		"fever":               "Fever",
		"cough":               "Cough",
		"runny_nose":          "Runny Nose",
		"vomiting":            "Vomiting",
		"rash":                "Rash",
		"headache":            "Headache",
		"sore_throat":         "Sore Throat",
		"nausea":              "Nausea",
		"fatigue":             "Fatigue",
		"loss_of_appetite":    "Loss of Appetite",
		"body_ache":           "Body Ache",
		"diarrhea":            "Diarrhea",
		"dizziness":           "Dizziness",
		"chest_pain":          "Chest Pain",
		"shortness_of_breath": "Shortness of Breath",
	}
}

// DefaultTrainingCorpus returns the seed examples used when the training
// store is empty, one per built-in disease profile.
func DefaultTrainingCorpus() []TrainingExample {
	return []TrainingExample{
		{Symptoms: SymptomSet{"fever", "cough", "body_ache"}, Disease: "Flu"},
		{Symptoms: SymptomSet{"runny_nose", "cough", "sore_throat"}, Disease: "Common Cold"},
		{Symptoms: SymptomSet{"nausea", "vomiting", "diarrhea"}, Disease: "Stomach Flu"},
		{Symptoms: SymptomSet{"headache", "nausea", "dizziness"}, Disease: "Migraine"},
		{Symptoms: SymptomSet{"sore_throat", "fever", "headache"}, Disease: "Tonsillitis"},
		{Symptoms: SymptomSet{"rash", "fever", "fatigue"}, Disease: "Chickenpox"},
		{Symptoms: SymptomSet{"cough", "fever", "shortness_of_breath"}, Disease: "Pneumonia"},
		{Symptoms: SymptomSet{"rash", "runny_nose", "shortness_of_breath"}, Disease: "Allergic Reaction"},
	}
}
