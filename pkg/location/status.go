package location

import (
	"time"

	"github.com/matst80/store-locator/pkg/geo"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
	PermissionUnknown Permission = "unknown"
)

func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return Permission(s)
	default:
		return PermissionUnknown
	}
}

// ReportedLocation is a position reported by the shopper's device.
type ReportedLocation struct {
	geo.Location
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Status struct {
	Enabled    bool              `json:"enabled"`
	Permission Permission        `json:"permission"`
	Location   *ReportedLocation `json:"location"`
	StatusText string            `json:"statusText"`
}

func StatusText(permission Permission, enabled bool) string {
	switch permission {
	case PermissionGranted:
		if enabled {
			return "Location Active"
		}
		return "Location Available"
	case PermissionDenied:
		return "Location Denied"
	case PermissionPrompt:
		return "Location Pending"
	default:
		return "Location Unknown"
	}
}

func NewStatus(permission Permission, enabled bool, loc *ReportedLocation) Status {
	return Status{
		Enabled:    enabled,
		Permission: permission,
		Location:   loc,
		StatusText: StatusText(permission, enabled),
	}
}
