// internal/models/finding.go
package models

// RiskLevel classifies the severity of a finding or screening result.
// Findings only ever use Low/Medium/High; screening results can additionally
// reach Critical (very strong match) or Minimal (nothing above the bands).
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Finding risk score thresholds. A score maps monotonically to a level.
const (
	FindingHighThreshold   = 4.0
	FindingMediumThreshold = 2.5
)

// FindingRiskLevel derives the level for a pattern-match risk score.
func FindingRiskLevel(score float64) RiskLevel {
	switch {
	case score >= FindingHighThreshold:
		return RiskHigh
	case score >= FindingMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Finding is a single compliance-pattern match in a document. It is created
// once per match and never mutated afterwards.
type Finding struct {
	ID          string    `json:"id"`
	Framework   Framework `json:"framework"`
	FindingType string    `json:"findingType"`
	MatchedText string    `json:"matchedText"`
	Context     string    `json:"context"`
	RiskScore   float64   `json:"riskScore"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Confidence  float64   `json:"confidence"`
	DocumentRef string    `json:"documentRef"`
	Position    int       `json:"position"`
}
