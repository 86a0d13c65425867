package models

import "time"

// AlertCategory classifies a monitoring condition. At most one unread alert
// per category exists at any time.
type AlertCategory string

const (
	AlertWaterLow      AlertCategory = "water_low"
	AlertWaterEmpty    AlertCategory = "water_empty"
	AlertDeviceOffline AlertCategory = "device_offline"
)

// AlertSeverity is the urgency of an alert.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a session-scoped notification derived from polled device state.
type Alert struct {
	ID        string        `json:"id"`
	Category  AlertCategory `json:"category"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Read      bool          `json:"read"`
	Severity  AlertSeverity `json:"severity"`
}

// ManualOverride is a time-bounded manual assignment of one actuator.
type ManualOverride struct {
	Device    ActuatorID `json:"device"`
	ExpiresAt time.Time  `json:"expiresAt"`
}
