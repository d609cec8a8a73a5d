// internal/importer/clean.go
package importer

import (
	"strings"
	"time"

	"compliance-engine/internal/models"
)

// countryAliases expands the short country codes seen in real list exports.
// Anything not in the table passes through unchanged.
var countryAliases = map[string]string{
	"usa":  "United States",
	"uk":   "United Kingdom",
	"uae":  "United Arab Emirates",
	"dprk": "North Korea",
}

// dateLayouts is the fixed, ordered set of date formats list exports use.
// The first successful parse wins; unparsable dates pass through raw.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"01-02-2006",
	"January 2, 2006",
	"2 January 2006",
}

// CleanRow extracts and normalizes the mapped semantic fields from one raw
// CSV row. Missing or NaN source values are simply absent from the output;
// none of the normalizers ever fails, bad values pass through raw.
func CleanRow(raw map[string]string, mapping models.ColumnMapping) map[models.SemanticField]string {
	clean := map[models.SemanticField]string{}

	for field, column := range mapping.Fields {
		value, ok := raw[column]
		if !ok || isMissing(value) {
			continue
		}
		value = strings.TrimSpace(value)

		switch field {
		case models.FieldEntityType:
			clean[field] = string(classifyEntityType(value))
		case models.FieldCountry:
			clean[field] = normalizeCountry(value)
		case models.FieldListDate:
			clean[field] = normalizeDate(value)
		case models.FieldAliases:
			if aliases := normalizeAliases(value); aliases != "" {
				clean[field] = aliases
			}
		default:
			clean[field] = value
		}
	}
	return clean
}

func isMissing(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "nan"
}

// classifyEntityType buckets a free-text type value by keyword.
func classifyEntityType(value string) models.EntityType {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "individual"), strings.Contains(v, "person"), strings.Contains(v, "natural"):
		return models.EntityIndividual
	case strings.Contains(v, "vessel"), strings.Contains(v, "ship"):
		return models.EntityVessel
	case strings.Contains(v, "aircraft"), strings.Contains(v, "plane"):
		return models.EntityAircraft
	case strings.Contains(v, "entity"), strings.Contains(v, "company"), strings.Contains(v, "organi"),
		strings.Contains(v, "corporat"), strings.Contains(v, "enterprise"), strings.Contains(v, "bank"):
		return models.EntityOrg
	default:
		return models.EntityOther
	}
}

func normalizeCountry(value string) string {
	if full, ok := countryAliases[strings.ToLower(value)]; ok {
		return full
	}
	return value
}

func normalizeDate(value string) string {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return value
}

// normalizeAliases splits a combined alias field on the delimiters the
// various exports use and rejoins with a single canonical one.
func normalizeAliases(value string) string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ',' || r == '|'
	})

	aliases := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}
	return strings.Join(aliases, "; ")
}
