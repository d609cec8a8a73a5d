// internal/models/screening.go
package models

// MatchType distinguishes which list family produced a screening match.
type MatchType string

const (
	MatchSanctions MatchType = "sanctions"
	MatchPEP       MatchType = "pep"
)

// ScreeningStatus reports whether a screening call completed. A storage
// failure yields StatusError instead of an error return so one bad lookup
// cannot abort a batch.
type ScreeningStatus string

const (
	ScreeningOK    ScreeningStatus = "ok"
	ScreeningError ScreeningStatus = "error"
)

// ScreeningMatch is a single watchlist hit at or above the caller's threshold.
type ScreeningMatch struct {
	Query           string    `json:"query"`
	EntityID        string    `json:"entityId"`
	EntityName      string    `json:"entityName"`
	ListName        string    `json:"listName"`
	MatchedOn       string    `json:"matchedOn"` // the name or alias that scored best
	SimilarityScore float64   `json:"similarityScore"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	MatchType       MatchType `json:"matchType"`
}

// ScreeningResult is the outcome of screening one name.
type ScreeningResult struct {
	Query        string           `json:"query"`
	EntityType   EntityType       `json:"entityType"`
	Status       ScreeningStatus  `json:"status"`
	Error        string           `json:"error,omitempty"`
	MatchFound   bool             `json:"matchFound"`
	HighestScore float64          `json:"highestScore"`
	RiskLevel    RiskLevel        `json:"riskLevel"`
	Matches      []ScreeningMatch `json:"matches,omitempty"`
	ScreenedAt   string           `json:"screenedAt"`
}

// ScreeningRiskLevel maps the best similarity score to an overall risk band.
func ScreeningRiskLevel(highestScore float64) RiskLevel {
	switch {
	case highestScore >= 0.9:
		return RiskCritical
	case highestScore >= 0.7:
		return RiskHigh
	case highestScore >= 0.5:
		return RiskMedium
	case highestScore >= 0.3:
		return RiskLow
	default:
		return RiskMinimal
	}
}
