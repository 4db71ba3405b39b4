package domain

import "time"

// Bay is the cluster a replication controller runs on.
//
// Bays are not managed through this API; they are loaded from the bay
// inventory file and only ever referenced by ReplicationController.BayUUID.
type Bay struct {
	UUID       string    `json:"uuid"`
	Name       string    `json:"name"`
	APIAddress string    `json:"api_address,omitempty"`
	Sources    []string  `json:"sources,omitempty"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
