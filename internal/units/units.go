// Package units converts set weights between kg and lbs. Everything stored
// or compared downstream is in kg; lbs only exists at the logging boundary.
package units

import (
	"math"

	"github.com/claude/ironlog/internal/models"
)

// KgPerLb is the conversion factor between pounds and kilograms.
const KgPerLb = 2.20462

// ToKg converts value to kilograms. Identity for kg input.
func ToKg(value float64, unit models.WeightUnit) (float64, error) {
	switch unit {
	case models.UnitKg:
		return value, nil
	case models.UnitLbs:
		return value / KgPerLb, nil
	default:
		return 0, models.Invalid("weight_unit", "unknown unit %q, want kg or lbs", unit)
	}
}

// ToLbs converts value to pounds. Identity for lbs input.
func ToLbs(value float64, unit models.WeightUnit) (float64, error) {
	switch unit {
	case models.UnitLbs:
		return value, nil
	case models.UnitKg:
		return value * KgPerLb, nil
	default:
		return 0, models.Invalid("weight_unit", "unknown unit %q, want kg or lbs", unit)
	}
}

// Convert dispatches between the two units and rounds to 1 decimal place.
func Convert(value float64, from, to models.WeightUnit) (float64, error) {
	var out float64
	var err error
	switch to {
	case models.UnitKg:
		out, err = ToKg(value, from)
	case models.UnitLbs:
		out, err = ToLbs(value, from)
	default:
		return 0, models.Invalid("weight_unit", "unknown unit %q, want kg or lbs", to)
	}
	if err != nil {
		return 0, err
	}
	return Round1(out), nil
}

// Round1 rounds to 1 decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
