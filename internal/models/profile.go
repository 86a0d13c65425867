package models

import (
	"errors"
	"fmt"
)

// Profile is a named set of environmental targets and automation timings
// for one mushroom species.
type Profile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Icon             string  `json:"icon"`
	MinHumidity      float64 `json:"minHumidity"`      // %RH
	MaxHumidity      float64 `json:"maxHumidity"`      // %RH
	MinTemperature   float64 `json:"minTemperature"`   // °C
	MaxTemperature   float64 `json:"maxTemperature"`   // °C
	FreshAirInterval int     `json:"freshAirInterval"` // minutes between exchange cycles
	FreshAirDuration int     `json:"freshAirDuration"` // seconds per exchange cycle
	FoggerMaxOnTime  int     `json:"foggerMaxOnTime"`  // seconds of continuous fogging
	IsCustom         bool    `json:"isCustom"`         // false for built-in profiles
}

var errProfileName = errors.New("profile name is required")

// Validate checks range ordering and that all timings are positive.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errProfileName
	}
	if p.MinHumidity > p.MaxHumidity {
		return fmt.Errorf("humidity range invalid: min %.1f > max %.1f", p.MinHumidity, p.MaxHumidity)
	}
	if p.MinTemperature > p.MaxTemperature {
		return fmt.Errorf("temperature range invalid: min %.1f > max %.1f", p.MinTemperature, p.MaxTemperature)
	}
	if p.FreshAirInterval <= 0 || p.FreshAirDuration <= 0 || p.FoggerMaxOnTime <= 0 {
		return errors.New("fresh-air interval/duration and fogger max on-time must be positive")
	}
	return nil
}
