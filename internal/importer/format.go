// internal/importer/format.go
package importer

import (
	"strings"

	"compliance-engine/internal/models"
)

// formatSignature is the set of normalized headers that identifies a schema
// family. All columns must be present for the signature to match.
type formatSignature struct {
	format  models.ListFormat
	columns []string
}

// formatSignatures is checked in order; the first full match wins. No
// scoring or voting, and anything unrecognized falls through to generic.
var formatSignatures = []formatSignature{
	{models.FormatOFACSDN, []string{"sdn_name", "sdn_type", "program"}},
	{models.FormatEUConsolidated, []string{"name_1", "regulation", "subject_type"}},
	{models.FormatUNConsolidated, []string{"dataid", "committee", "listed_on"}},
}

// fieldCandidates lists, per format, the ordered header names tried for each
// semantic field. Exact match runs over this list first; substring fallback
// scans the file's headers in file order.
var fieldCandidates = map[models.ListFormat]map[models.SemanticField][]string{
	models.FormatOFACSDN: {
		models.FieldName:       {"sdn_name", "name"},
		models.FieldAliases:    {"aka", "aliases", "alt_names"},
		models.FieldEntityType: {"sdn_type", "type"},
		models.FieldProgram:    {"program", "programs"},
		models.FieldAddress:    {"address", "addresses"},
		models.FieldCountry:    {"country"},
		models.FieldListDate:   {"list_date", "publish_date"},
		models.FieldIDNumber:   {"id_number", "ent_num", "uid"},
	},
	models.FormatEUConsolidated: {
		models.FieldName:       {"name_1", "whole_name", "name"},
		models.FieldAliases:    {"name_2", "alias", "aka"},
		models.FieldEntityType: {"subject_type", "type"},
		models.FieldProgram:    {"regulation", "programme", "program"},
		models.FieldAddress:    {"address", "address_1"},
		models.FieldCountry:    {"country", "country_1"},
		models.FieldListDate:   {"listing_date", "regulation_date", "list_date"},
		models.FieldIDNumber:   {"identification", "id_number", "passport_number"},
	},
	models.FormatUNConsolidated: {
		models.FieldName:       {"name", "full_name", "first_name"},
		models.FieldAliases:    {"alias", "aka", "name_original_script"},
		models.FieldEntityType: {"un_list_type", "type"},
		models.FieldProgram:    {"committee", "un_list_type"},
		models.FieldAddress:    {"address"},
		models.FieldCountry:    {"nationality", "country"},
		models.FieldListDate:   {"listed_on"},
		models.FieldIDNumber:   {"dataid", "reference_number"},
	},
	models.FormatGeneric: {
		models.FieldName:       {"name", "full_name", "entity_name"},
		models.FieldAliases:    {"aliases", "alias", "aka", "alternative_names"},
		models.FieldEntityType: {"entity_type", "type", "category"},
		models.FieldProgram:    {"program", "list", "regime"},
		models.FieldAddress:    {"address", "location"},
		models.FieldCountry:    {"country", "nationality", "citizenship"},
		models.FieldListDate:   {"list_date", "date_listed", "listing_date", "date"},
		models.FieldIDNumber:   {"id_number", "identifier", "passport", "id"},
	},
}

// normalizeHeader canonicalizes a CSV header for comparison.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// DetectFormat classifies a header row into one of the known schema
// families. It is total: every input maps to exactly one format.
func DetectFormat(headers []string) models.ListFormat {
	present := map[string]bool{}
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}

	for _, sig := range formatSignatures {
		matched := true
		for _, col := range sig.columns {
			if !present[col] {
				matched = false
				break
			}
		}
		if matched {
			return sig.format
		}
	}
	return models.FormatGeneric
}

// MapColumns resolves each semantic field to a source column. For every
// field the format's candidates are tried as exact matches first, then a
// substring scan over the headers in file order; the first hit wins. Source
// columns no field claimed are reported as unmapped.
func MapColumns(headers []string, format models.ListFormat) models.ColumnMapping {
	candidates, ok := fieldCandidates[format]
	if !ok {
		candidates = fieldCandidates[models.FormatGeneric]
	}

	normalized := make([]string, len(headers))
	byNormalized := map[string]string{}
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
		if _, seen := byNormalized[normalized[i]]; !seen {
			byNormalized[normalized[i]] = h
		}
	}

	mapping := models.ColumnMapping{
		DetectedFormat: format,
		Fields:         map[models.SemanticField]string{},
	}
	used := map[string]bool{}

	for _, field := range models.SemanticFields {
		if source, ok := resolveField(candidates[field], normalized, byNormalized); ok {
			mapping.Fields[field] = source
			used[source] = true
		}
	}

	for _, h := range headers {
		if !used[h] {
			mapping.UnmappedColumns = append(mapping.UnmappedColumns, h)
		}
	}
	return mapping
}

func resolveField(candidates []string, normalized []string, byNormalized map[string]string) (string, bool) {
	for _, cand := range candidates {
		if source, ok := byNormalized[cand]; ok {
			return source, true
		}
	}
	for _, header := range normalized {
		for _, cand := range candidates {
			if strings.Contains(header, cand) {
				return byNormalized[header], true
			}
		}
	}
	return "", false
}
