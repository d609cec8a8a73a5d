// pkg/sources/schema.go
package sources

// SourceRegistry is the catalog of sanctions/PEP list sources the importer
// can pull from. It lives in a JSON file so operations can add or disable a
// source without a rebuild.
type SourceRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Sources     []Source `json:"sources"`
}

// Source describes one downloadable list export.
type Source struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	ListName    string   `json:"listName"`
	URL         string   `json:"url"`
	Format      string   `json:"format"` // expected schema family, informational
	Enabled     bool     `json:"enabled"`
	RefreshCron string   `json:"refreshCron"`
	Tags        []string `json:"tags"`
}
