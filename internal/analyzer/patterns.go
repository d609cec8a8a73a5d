// internal/analyzer/patterns.go
package analyzer

import (
	"regexp"

	"compliance-engine/internal/models"
)

// PatternRule couples a compiled compliance-language pattern with the finding
// type it produces. Rules are immutable after construction; the tables below
// are compiled once at process start and shared.
type PatternRule struct {
	FindingType string
	Pattern     *regexp.Regexp
}

func rule(findingType, expr string) PatternRule {
	return PatternRule{
		FindingType: findingType,
		Pattern:     regexp.MustCompile(`(?i)` + expr),
	}
}

// defaultPatternTables returns the per-framework ordered rule lists. Order
// matters: findings are reported in match-position order, and ties between
// rules at the same position resolve in table order.
func defaultPatternTables() map[models.Framework][]PatternRule {
	return map[models.Framework][]PatternRule{
		models.FrameworkSanctions: {
			rule("ofac_reference", `\bOFAC\b|specially designated nationals?|\bSDN list\b`),
			rule("sanctions_language", `sanction(?:s|ed)?\s+(?:list|screening|regime|violation|program)`),
			rule("embargo_reference", `\bembargo(?:es|ed)?\b`),
			rule("export_control", `export control(?:s)?|dual[- ]use goods`),
			rule("blocked_party", `blocked (?:person|part(?:y|ies)|propert(?:y|ies))|denied part(?:y|ies)`),
			rule("restricted_jurisdiction", `(?:comprehensive|sectoral)\s+sanctions|restricted (?:countr(?:y|ies)|jurisdictions?)`),
		},
		models.FrameworkAMLCFT: {
			rule("money_laundering", `money launder(?:ing|er)`),
			rule("terrorist_financing", `terroris[mt] financing|financing of terrorism`),
			rule("suspicious_activity", `suspicious (?:activity|transaction)(?:\s+report)?`),
			rule("kyc_obligation", `know your customer|customer due diligence|\bKYC\b|\bCDD\b`),
			rule("beneficial_ownership", `(?:ultimate\s+)?beneficial owner(?:ship)?|\bUBO\b`),
			rule("cash_reporting", `currency transaction report|cash transaction(?:s)? (?:above|over|exceeding)`),
		},
		models.FrameworkGDPR: {
			rule("personal_data", `personal data|personally identifiable information|\bPII\b`),
			rule("data_subject_rights", `data subject(?:s)?(?:\s+rights?)?|right to (?:be forgotten|erasure|access|rectification)`),
			rule("consent_requirement", `(?:explicit|informed|unambiguous)\s+consent|lawful basis`),
			rule("breach_notification", `(?:data|personal data) breach notification|supervisory authority`),
			rule("dpo_reference", `data protection officer|\bDPO\b`),
			rule("cross_border_transfer", `cross[- ]border (?:data\s+)?transfer|standard contractual clauses`),
		},
		models.FrameworkPCIDSS: {
			rule("cardholder_data", `cardholder data|card holder data`),
			rule("pan_handling", `primary account number|\bPAN\b(?:\s+storage)?|card number(?:s)? (?:stored|retained)`),
			rule("card_environment", `cardholder data environment|\bCDE\b|payment card (?:industry|data)`),
			rule("card_encryption", `encrypt(?:ion|ed)?\s+(?:of\s+)?card(?:holder)? data|tokeni[sz]ation`),
			rule("card_access_control", `access to cardholder data|need[- ]to[- ]know`),
		},
		models.FrameworkSOX: {
			rule("internal_controls", `internal control(?:s)?(?:\s+over financial reporting)?|\bICFR\b`),
			rule("financial_reporting", `financial (?:reporting|statements?|disclosures?)`),
			rule("audit_committee", `audit committee|external auditor(?:s)?`),
			rule("material_weakness", `material weakness(?:es)?|significant deficienc(?:y|ies)`),
			rule("certification", `section 302|section 404|management certification`),
		},
		models.FrameworkFinancialCrime: {
			rule("fraud_reference", `fraud(?:ulent)?(?:\s+(?:activity|scheme|transaction))?`),
			rule("bribery_corruption", `briber(?:y|ies)|corrupt(?:ion)?|kickback(?:s)?|\bFCPA\b`),
			rule("embezzlement", `embezzle(?:ment|d)?|misappropriation`),
			rule("market_abuse", `insider (?:trading|dealing)|market (?:abuse|manipulation)`),
			rule("wire_fraud", `wire fraud|advance fee|ponzi scheme`),
		},
		models.FrameworkCybersecurity: {
			rule("data_breach", `(?:data|security) breach(?:es)?|data (?:leak|exfiltration)`),
			rule("unauthorized_access", `unauthori[sz]ed access|privilege escalation|compromised (?:account|credential)s?`),
			rule("malware", `malware|ransomware|trojan|botnet`),
			rule("phishing", `phishing|social engineering|business email compromise`),
			rule("vulnerability", `vulnerabilit(?:y|ies)|zero[- ]day|unpatched`),
			rule("incident_response", `incident response|security incident(?:s)?`),
		},
	}
}

// defaultFrameworkWeights holds the fixed per-framework scoring multipliers.
// These reproduce the historical risk model; do not tune them without a
// product decision, downstream thresholds are calibrated against them.
func defaultFrameworkWeights() map[models.Framework]float64 {
	return map[models.Framework]float64{
		models.FrameworkSanctions:      5.0,
		models.FrameworkAMLCFT:         4.5,
		models.FrameworkPCIDSS:         4.0,
		models.FrameworkGDPR:           4.0,
		models.FrameworkSOX:            3.5,
		models.FrameworkFinancialCrime: 3.0,
		models.FrameworkCybersecurity:  4.0,
	}
}
