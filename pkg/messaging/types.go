package messaging

import "time"

type ChangeTopic string

const (
	StoresChanged ChangeTopic = "stores_changed"
	Tracking      ChangeTopic = "tracking"
)

// StoresChangedEvent is published after the catalog for a country was replaced.
type StoresChangedEvent struct {
	Country string    `json:"country"`
	Count   int       `json:"count"`
	Source  string    `json:"source,omitempty"`
	Changed time.Time `json:"changed"`
}
