// Package settings defines the persistent configuration values of the
// power-feed controller and their on-EEPROM tags.
package settings

import (
	"github.com/feedctl/go-flashplan/eeprom"
)

// Setting describes one persistent value: its EEPROM tag, the default used
// when the value was never written, and the valid range it is clamped to.
type Setting struct {
	Label   string
	Tag     uint16
	Default uint16
	Min     uint16
	Max     uint16
}

// Range returns the valid value range.
func (s Setting) Range() (min, max uint16) {
	return s.Min, s.Max
}

// Read returns the stored value clamped into the valid range, or the
// default when the setting was never written.
func (s Setting) Read(store *eeprom.Store) (uint16, error) {
	v, ok, err := store.Read(s.Tag)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.Default, nil
	}
	return clamp(v, s.Min, s.Max), nil
}

// Write stores the value, clamped into the valid range.
func (s Setting) Write(store *eeprom.Store, value uint16) error {
	return store.Write(s.Tag, clamp(value, s.Min, s.Max))
}

func clamp(v, min, max uint16) uint16 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// StepsPerRotation is fixed by the stepper motor and not configurable.
const StepsPerRotation = 200

var (
	IsLathe    = Setting{Label: "Is Lathe?", Tag: 0x01, Default: 0, Min: 0, Max: 1}
	IsReversed = Setting{Label: "Reverse Dir?", Tag: 0x02, Default: 0, Min: 0, Max: 1}
	Microsteps = Setting{Label: "Microsteps", Tag: 0x03, Default: 16, Min: 1, Max: 125}
	Pitch      = Setting{Label: "Pitch", Tag: 0x04, Default: 16, Min: 1, Max: 32}
	MaxIPM     = Setting{Label: "Max IPM", Tag: 0x05, Default: 30, Min: 1, Max: 30}
	// Steps per second per second.
	Acceleration = Setting{Label: "Acceleration", Tag: 0x06, Default: 1200, Min: 200, Max: 2400}
)

// Catalog lists every setting in tag order.
var Catalog = []Setting{IsLathe, IsReversed, Microsteps, Pitch, MaxIPM, Acceleration}

// StepsPerInch reads the leadscrew pitch and microstepping settings and
// returns how many steps move the table one inch.
func StepsPerInch(store *eeprom.Store) (uint32, error) {
	pitch, err := Pitch.Read(store)
	if err != nil {
		return 0, err
	}
	microsteps, err := Microsteps.Read(store)
	if err != nil {
		return 0, err
	}
	return uint32(pitch) * uint32(microsteps) * StepsPerRotation, nil
}
