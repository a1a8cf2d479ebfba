package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// Actor identifiers are opaque strings supplied by the caller; the core
// never authenticates them.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
