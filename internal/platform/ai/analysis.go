// Package ai calls a hosted multimodal model to analyze retinal fundus
// images and parses its reply into typed per-eye findings. The gateway has
// no persistence side effects; callers attach identifiers and store results.
package ai

import "fmt"

// DiseaseType is the closed diagnosis vocabulary the model must answer from.
type DiseaseType string

const (
	DiseaseNormal   DiseaseType = "Normal"
	DiseaseMildDR   DiseaseType = "Mild Diabetic Retinopathy"
	DiseaseSevereDR DiseaseType = "Severe Diabetic Retinopathy"
	DiseaseGlaucoma DiseaseType = "Glaucoma"
	DiseaseCataract DiseaseType = "Cataract"
	DiseaseAMD      DiseaseType = "Age-related Macular Degeneration"
)

var validDiseases = map[DiseaseType]bool{
	DiseaseNormal: true, DiseaseMildDR: true, DiseaseSevereDR: true,
	DiseaseGlaucoma: true, DiseaseCataract: true, DiseaseAMD: true,
}

// Diseases returns the vocabulary in a stable order for prompt construction.
func Diseases() []DiseaseType {
	return []DiseaseType{
		DiseaseNormal, DiseaseMildDR, DiseaseSevereDR,
		DiseaseGlaucoma, DiseaseCataract, DiseaseAMD,
	}
}

// Severity grades a finding.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var validSeverities = map[Severity]bool{
	SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
}

// Severities returns the grading scale in a stable order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// EyeAnalysis is the per-eye diagnostic output. All five fields are required;
// riskScore and confidenceScore are independent (a low-confidence high-risk
// finding is valid). Immutable once attached to a screening result.
type EyeAnalysis struct {
	Disease         DiseaseType `json:"disease"`
	Severity        Severity    `json:"severity"`
	RiskScore       float64     `json:"riskScore"`
	ConfidenceScore float64     `json:"confidenceScore"`
	Abnormalities   string      `json:"abnormalities"`
}

// Validate checks the analysis against the declared schema.
func (a *EyeAnalysis) Validate() error {
	if !validDiseases[a.Disease] {
		return fmt.Errorf("disease %q not in vocabulary", a.Disease)
	}
	if !validSeverities[a.Severity] {
		return fmt.Errorf("severity %q not in vocabulary", a.Severity)
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		return fmt.Errorf("riskScore %v outside [0,100]", a.RiskScore)
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 100 {
		return fmt.Errorf("confidenceScore %v outside [0,100]", a.ConfidenceScore)
	}
	if a.Abnormalities == "" {
		return fmt.Errorf("abnormalities is required")
	}
	return nil
}
