package tracking

import (
	"net/http"
)

type Tracking interface {
	TrackSession(sessionId string, r *http.Request)
	TrackStoreQuery(sessionId string, query StoreQuery)
	TrackLocation(sessionId string, change LocationChange)
	Close() error
}

const (
	EventSession    uint16 = 0
	EventStoreQuery uint16 = 1
	EventLocation   uint16 = 2
)

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Country   string `json:"country,omitempty"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

// StoreQuery describes one ranking request.
type StoreQuery struct {
	Kind          string  `json:"kind"`
	Product       string  `json:"product,omitempty"`
	Source        string  `json:"source,omitempty"`
	MaxDistanceKm float64 `json:"max_distance"`
	MaxResults    int     `json:"max_results"`
	Results       int     `json:"noi"`
	ClosestId     string  `json:"closest,omitempty"`
}

type StoreQueryEvent struct {
	*BaseEvent
	StoreQuery
}

// LocationChange describes a reported, denied or disabled location.
type LocationChange struct {
	Permission string  `json:"permission"`
	Enabled    bool    `json:"enabled"`
	Accuracy   float64 `json:"accuracy,omitempty"`
}

type LocationEvent struct {
	*BaseEvent
	LocationChange
}

func clientIp(r *http.Request) string {
	for _, h := range []string{"CF-Connecting-IP", "X-Real-Ip", "X-Forwarded-For"} {
		if v := r.Header.Get(h); v != "" {
			return v
		}
	}
	return r.RemoteAddr
}

// Noop drops every event, used when no broker is configured.
type Noop struct{}

func (Noop) TrackSession(string, *http.Request) {}
func (Noop) TrackStoreQuery(string, StoreQuery) {}
func (Noop) TrackLocation(string, LocationChange) {}
func (Noop) Close() error { return nil }
