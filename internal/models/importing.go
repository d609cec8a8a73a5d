// internal/models/importing.go
package models

// ListFormat is the detected schema family of a sanctions/PEP CSV export.
type ListFormat string

const (
	FormatOFACSDN        ListFormat = "ofac_sdn"
	FormatEUConsolidated ListFormat = "eu_consolidated"
	FormatUNConsolidated ListFormat = "un_consolidated"
	FormatGeneric        ListFormat = "generic"
	FormatCustom         ListFormat = "custom"
)

// SemanticField names a field the importer tries to locate in any CSV schema.
type SemanticField string

const (
	FieldName       SemanticField = "name"
	FieldAliases    SemanticField = "aliases"
	FieldEntityType SemanticField = "entity_type"
	FieldProgram    SemanticField = "program"
	FieldAddress    SemanticField = "address"
	FieldCountry    SemanticField = "country"
	FieldListDate   SemanticField = "list_date"
	FieldIDNumber   SemanticField = "id_number"
)

// SemanticFields is the fixed order in which columns are resolved.
var SemanticFields = []SemanticField{
	FieldName, FieldAliases, FieldEntityType, FieldProgram,
	FieldAddress, FieldCountry, FieldListDate, FieldIDNumber,
}

// ColumnMapping records how a CSV file's columns map onto semantic fields.
// Every semantic field maps to at most one source column (first-match-wins);
// unmapped semantic fields are simply absent.
type ColumnMapping struct {
	DetectedFormat  ListFormat               `json:"detectedFormat"`
	Fields          map[SemanticField]string `json:"fields"`
	UnmappedColumns []string                 `json:"unmappedColumns,omitempty"`
}

// ImportSummary is the outcome of one CSV import run.
// Imported + Errors always equals TotalRows.
type ImportSummary struct {
	TotalRows      int           `json:"totalRowsProcessed"`
	Imported       int           `json:"successfullyImported"`
	Errors         int           `json:"errors"`
	DetectedFormat ListFormat    `json:"detectedFormat"`
	Mapping        ColumnMapping `json:"columnMapping"`
}
