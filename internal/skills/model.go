package skills

// UploadedDocument is a document received for a single extraction request.
type UploadedDocument struct {
	Data             []byte
	DeclaredMimeType string
	SizeBytes        int64
	FileName         string
}

// SkillRecord is one validated skill with the candidate's years of experience.
// The JSON field names are the ones the model is asked to produce and the API returns.
type SkillRecord struct {
	Name            string  `json:"NAME"`
	ExperienceYears float64 `json:"EXPERIENCE"`
}
