// internal/analyzer/report.go
package analyzer

import (
	"sort"

	"compliance-engine/internal/common/metrics"
	"compliance-engine/internal/models"
)

// DocumentInput is one document handed to collection analysis. Text is
// assumed to be already extracted plain text.
type DocumentInput struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

// Report aggregates findings across a document collection.
type Report struct {
	DocumentsAnalyzed int              `json:"documentsAnalyzed"`
	ComplianceIssues  int              `json:"complianceIssues"`
	HighRiskItems     int              `json:"highRiskItems"`
	AvgRiskScore      float64          `json:"avgRiskScore"`
	Findings          []models.Finding `json:"findings"`
}

// perDocumentScoreCap bounds the aggregate score contribution of any single
// document so one noisy file cannot dominate the collection average.
const perDocumentScoreCap = 10.0

// AnalyzeCollection scans every document under every requested framework and
// aggregates the results. The average risk score only counts documents that
// produced at least one finding.
func (a *Analyzer) AnalyzeCollection(docs []DocumentInput, frameworks []models.Framework) (*Report, error) {
	report := &Report{DocumentsAnalyzed: len(docs)}

	all := []models.Finding{}
	var scoreSum float64
	var scoredDocs int

	for _, doc := range docs {
		var docScore float64
		var docFindings int

		for _, fw := range frameworks {
			findings, err := a.DetectComplianceIssues(doc.Text, fw.String(), doc.Ref)
			if err != nil {
				return nil, err
			}
			metrics.DocumentsAnalyzed.WithLabelValues(fw.String()).Inc()

			for _, f := range findings {
				docScore += f.RiskScore
				docFindings++
				all = append(all, f)
				metrics.FindingsEmitted.WithLabelValues(f.Framework.String(), string(f.RiskLevel)).Inc()

				switch f.RiskLevel {
				case models.RiskHigh:
					report.ComplianceIssues++
					report.HighRiskItems++
				case models.RiskMedium:
					report.ComplianceIssues++
				}
			}
		}

		if docFindings > 0 {
			if docScore > perDocumentScoreCap {
				docScore = perDocumentScoreCap
			}
			scoreSum += docScore
			scoredDocs++
		}
	}

	if scoredDocs > 0 {
		report.AvgRiskScore = scoreSum / float64(scoredDocs)
	}

	report.Findings = dedupeFindings(all)
	return report, nil
}

// dedupeFindings keeps only the highest-scoring finding per
// (framework, findingType) pair, sorted descending by score.
func dedupeFindings(findings []models.Finding) []models.Finding {
	type key struct {
		framework   models.Framework
		findingType string
	}

	best := map[key]models.Finding{}
	for _, f := range findings {
		k := key{f.Framework, f.FindingType}
		if cur, ok := best[k]; !ok || f.RiskScore > cur.RiskScore {
			best[k] = f
		}
	}

	out := make([]models.Finding, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out
}
