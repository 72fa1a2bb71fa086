package domain

import "time"

// Change feed topics. Subscribers receive a full-state Snapshot whenever the
// corresponding subtree changes.
const (
	TopicProducts      = "feed:products"
	TopicDistributions = "feed:distributions"
)

type Snapshot struct {
	Topic         string               `json:"topic"`
	At            time.Time            `json:"at"`
	Products      []Product            `json:"products,omitempty"`
	Distributions []DistributionRecord `json:"distributions,omitempty"`
}
