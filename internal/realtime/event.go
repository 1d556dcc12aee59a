package realtime

import "time"

// ChangeEvent announces one committed document write.
type ChangeEvent struct {
	Collection string         `json:"collection"`
	DocID      string         `json:"docId"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}
