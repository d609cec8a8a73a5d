// internal/analyzer/analyzer.go
package analyzer

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// Config holds the text-scanning settings.
type Config struct {
	// MinTextLength is the minimum text size worth scanning. Shorter inputs
	// yield an empty result, not an error.
	MinTextLength int
	// ContextChars is the context window captured on each side of a match.
	ContextChars int
}

// ScoringConfig holds the risk-scoring constants. The defaults reproduce the
// historical model exactly; see DefaultScoringConfig.
type ScoringConfig struct {
	BaseScore          float64
	HighKeywordBoost   float64
	MediumKeywordBoost float64
	LongPhraseBoost    float64
	MaxScore           float64
	Confidence         float64
	HighRiskKeywords   []string
	MediumRiskKeywords []string
	FrameworkWeights   map[models.Framework]float64
}

// DefaultConfig returns the standard scanning settings.
func DefaultConfig() Config {
	return Config{
		MinTextLength: 100,
		ContextChars:  100,
	}
}

// DefaultScoringConfig returns the fixed risk-scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:          2.0,
		HighKeywordBoost:   1.5,
		MediumKeywordBoost: 0.8,
		LongPhraseBoost:    0.5,
		MaxScore:           5.0,
		Confidence:         0.8,
		HighRiskKeywords:   []string{"violation", "breach", "non-compliance", "failure", "risk", "alert"},
		MediumRiskKeywords: []string{"requirement", "must", "shall", "mandatory", "critical"},
		FrameworkWeights:   defaultFrameworkWeights(),
	}
}

// Analyzer scans free text for framework-specific compliance language and
// emits scored findings. It holds no mutable state after construction, so a
// single instance is safe for concurrent use across documents.
type Analyzer struct {
	config  Config
	scoring ScoringConfig
	rules   map[models.Framework][]PatternRule
	logger  logger.Logger
}

// New creates an Analyzer with the default pattern tables.
func New(config Config, scoring ScoringConfig, log logger.Logger) *Analyzer {
	return &Analyzer{
		config:  config,
		scoring: scoring,
		rules:   defaultPatternTables(),
		logger:  log.WithFields(map[string]interface{}{"component": "analyzer"}),
	}
}

// DetectComplianceIssues scans text under one framework and returns findings
// ordered by match position. It is a pure function of (text, pattern table);
// a fresh call re-scans from scratch.
func (a *Analyzer) DetectComplianceIssues(text, framework, documentRef string) ([]models.Finding, error) {
	fw, err := models.ParseFramework(framework)
	if err != nil {
		return nil, errors.NewInvalidFrameworkError(framework)
	}

	if len(text) < a.config.MinTextLength {
		return []models.Finding{}, nil
	}

	findings := []models.Finding{}
	for _, rule := range a.rules[fw] {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			matched := text[loc[0]:loc[1]]
			context := a.contextWindow(text, loc[0], loc[1])
			score := a.scoreMatch(fw, matched, context)

			findings = append(findings, models.Finding{
				ID:          uuid.New().String(),
				Framework:   fw,
				FindingType: rule.FindingType,
				MatchedText: matched,
				Context:     context,
				RiskScore:   score,
				RiskLevel:   models.FindingRiskLevel(score),
				Confidence:  a.scoring.Confidence,
				DocumentRef: documentRef,
				Position:    loc[0],
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Position < findings[j].Position
	})

	a.logger.Debug("text scanned", map[string]interface{}{
		"framework":   framework,
		"documentRef": documentRef,
		"findings":    len(findings),
	})

	return findings, nil
}

// contextWindow returns up to ContextChars characters on each side of the
// match, clipped at the string bounds.
func (a *Analyzer) contextWindow(text string, start, end int) string {
	from := start - a.config.ContextChars
	if from < 0 {
		from = 0
	}
	to := end + a.config.ContextChars
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}

// scoreMatch computes the risk score for one pattern match. Each risk keyword
// contributes once based on presence in the context window, not per
// occurrence.
func (a *Analyzer) scoreMatch(fw models.Framework, matched, context string) float64 {
	score := a.scoring.BaseScore
	loweredContext := strings.ToLower(context)

	for _, kw := range a.scoring.HighRiskKeywords {
		if strings.Contains(loweredContext, kw) {
			score += a.scoring.HighKeywordBoost
		}
	}
	for _, kw := range a.scoring.MediumRiskKeywords {
		if strings.Contains(loweredContext, kw) {
			score += a.scoring.MediumKeywordBoost
		}
	}

	if len(strings.Fields(matched)) > 3 {
		score += a.scoring.LongPhraseBoost
	}

	score *= a.scoring.FrameworkWeights[fw] / 3.0

	if score > a.scoring.MaxScore {
		score = a.scoring.MaxScore
	}
	return score
}
