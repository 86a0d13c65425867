package models

import "time"

// ActuatorID names one of the three controllable actuators.
type ActuatorID string

const (
	ActuatorFogger         ActuatorID = "fogger"
	ActuatorExhaustFan     ActuatorID = "exhaustFan"
	ActuatorCirculationFan ActuatorID = "circulationFan"
)

// Valid reports whether the id is one of the known actuators.
func (a ActuatorID) Valid() bool {
	switch a {
	case ActuatorFogger, ActuatorExhaustFan, ActuatorCirculationFan:
		return true
	}
	return false
}

// WaterStatus is the tank level reported by the device.
type WaterStatus string

const (
	WaterOK    WaterStatus = "OK"
	WaterLow   WaterStatus = "LOW"
	WaterEmpty WaterStatus = "EMPTY"
)

// ConnectionMode tags how a piece of device data was obtained.
type ConnectionMode string

const (
	ModeCloud   ConnectionMode = "cloud"
	ModeLocal   ConnectionMode = "local"
	ModeOffline ConnectionMode = "offline" // served from stale cache
)

// SensorData mirrors the device's /sensors payload. AvgHumidity is the
// device-computed mean of the two independent humidity probes.
type SensorData struct {
	Temperature float64   `json:"temperature"`
	Humidity1   float64   `json:"humidity1"`
	Humidity2   float64   `json:"humidity2"`
	AvgHumidity float64   `json:"avgHumidity"`
	Timestamp   time.Time `json:"timestamp"`
}

// DeviceStatus mirrors the device's /status payload.
type DeviceStatus struct {
	Online         bool      `json:"online"`
	Fogger         bool      `json:"fogger"`
	ExhaustFan     bool      `json:"exhaustFan"`
	CirculationFan bool      `json:"circulationFan"`
	Mode           string    `json:"mode"` // auto | manual
	LastUpdate     time.Time `json:"lastUpdate"`
}

// WaterLevel mirrors the device's /water payload.
type WaterLevel struct {
	Status WaterStatus `json:"status"`
	Level  *float64    `json:"level,omitempty"` // percent, when the device reports it
}

// ManualState mirrors the device's /manual/enable response.
type ManualState struct {
	Enabled   bool       `json:"enabled"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Devices   struct {
		Fogger         bool `json:"fogger"`
		ExhaustFan     bool `json:"exhaustFan"`
		CirculationFan bool `json:"circulationFan"`
	} `json:"devices"`
}

// DeviceSnapshot is the last observed aggregate state of the enclosure.
// Replaced wholesale on a successful poll; a failed poll keeps the previous
// snapshot with ConnectionMode set to offline.
type DeviceSnapshot struct {
	Online         bool           `json:"online"`
	Fogger         bool           `json:"fogger"`
	ExhaustFan     bool           `json:"exhaustFan"`
	CirculationFan bool           `json:"circulationFan"`
	Water          WaterStatus    `json:"waterTankStatus"`
	Sensors        SensorData     `json:"sensors"`
	ObservedAt     time.Time      `json:"observedAt"`
	ConnectionMode ConnectionMode `json:"connectionMode"`
}
