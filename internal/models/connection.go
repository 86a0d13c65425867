package models

// ConnectionConfig holds how to reach the enclosure controller. A single
// row per installation, overwritten in place, never deleted.
type ConnectionConfig struct {
	Address    string `json:"address"`
	Port       int    `json:"port"`
	AuthToken  string `json:"authToken"`
	AutoDetect bool   `json:"autoDetect"`
}

// DefaultConnectionConfig is the first-run configuration: the controller's
// access-point address, plain HTTP, no credential.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Address:    "192.168.4.1",
		Port:       80,
		AuthToken:  "",
		AutoDetect: true,
	}
}
