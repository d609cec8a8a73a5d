// internal/models/watchlist.go
package models

// EntityType classifies a watchlist entry.
type EntityType string

const (
	EntityIndividual EntityType = "individual"
	EntityOrg        EntityType = "entity"
	EntityVessel     EntityType = "vessel"
	EntityAircraft   EntityType = "aircraft"
	EntityOther      EntityType = "other"
)

// EntityStatus tracks the soft-delete lifecycle of a watchlist entry.
// Entries are never hard-deleted; a list refresh marks prior entries inactive
// so the audit trail survives.
type EntityStatus string

const (
	StatusActive   EntityStatus = "active"
	StatusInactive EntityStatus = "inactive"
)

// WatchlistEntity is one sanctions or PEP list entry. Only active entities
// participate in screening.
type WatchlistEntity struct {
	ID             string       `json:"id"`
	ListName       string       `json:"listName"`
	EntityType     EntityType   `json:"entityType"`
	Name           string       `json:"name"`
	Aliases        []string     `json:"aliases,omitempty"`
	Country        string       `json:"country,omitempty"`
	Program        string       `json:"program,omitempty"`
	Address        string       `json:"address,omitempty"`
	ListDate       string       `json:"listDate,omitempty"`
	IDNumber       string       `json:"idNumber,omitempty"`
	BaseRiskWeight float64      `json:"baseRiskWeight"`
	Status         EntityStatus `json:"status"`
}
