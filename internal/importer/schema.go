// internal/importer/schema.go
package importer

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"compliance-engine/internal/models"
)

// rowSchema is the contract a cleaned row must satisfy before it becomes a
// watchlist record. Only name is mandatory; everything else is best-effort
// extraction, but when present it must look like the right kind of value.
var rowSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name"},
	"properties": map[string]interface{}{
		"name":        map[string]interface{}{"type": "string", "minLength": 2},
		"aliases":     map[string]interface{}{"type": "string"},
		"entity_type": map[string]interface{}{"type": "string", "enum": []interface{}{"individual", "entity", "vessel", "aircraft", "other"}},
		"program":     map[string]interface{}{"type": "string"},
		"address":     map[string]interface{}{"type": "string"},
		"country":     map[string]interface{}{"type": "string"},
		"list_date":   map[string]interface{}{"type": "string"},
		"id_number":   map[string]interface{}{"type": "string"},
	},
	"additionalProperties": false,
}

// validateRow checks a cleaned row against the watchlist record schema.
func validateRow(clean map[models.SemanticField]string) error {
	doc := make(map[string]interface{}, len(clean))
	for field, value := range clean {
		doc[string(field)] = value
	}

	schemaLoader := gojsonschema.NewGoLoader(rowSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("row validation failed: %v", errs)
	}
	return nil
}
