package vitals

import "math"

// Status is the coarse clinical-risk tier derived from fixed thresholds.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusAlert    Status = "alert"
	StatusCritical Status = "critical"
)

// Evaluate maps a measurement to a status tier. For blood pressure the
// primary value is systolic and secondary is diastolic; every other type
// ignores secondary. A NaN primary (or, for blood pressure, either half)
// returns normal — missing input is deliberately fail-open rather than a
// separate unknown tier.
//
// Evaluate is pure: no side effects, deterministic for a given input.
func Evaluate(t VitalType, primary, secondary float64) Status {
	if math.IsNaN(primary) {
		return StatusNormal
	}

	switch t {
	case TypeBloodPressure:
		sys, dia := primary, secondary
		if math.IsNaN(dia) {
			return StatusNormal
		}
		// Precedence: hypotension, then hypertension, then elevated.
		switch {
		case sys < 90 || dia < 60:
			return StatusAlert
		case sys >= 140 || dia >= 90:
			return StatusCritical
		case sys >= 121 || dia >= 81:
			return StatusAlert
		}
		return StatusNormal

	case TypeBloodSugar:
		switch {
		case primary < 70:
			return StatusAlert
		case primary >= 126:
			return StatusCritical
		case primary >= 100:
			return StatusAlert
		}
		return StatusNormal

	case TypeHeartRate, TypePulseRate:
		if primary < 60 || primary > 100 {
			return StatusAlert
		}
		return StatusNormal

	case TypeOxygenSaturation:
		switch {
		case primary < 92:
			return StatusCritical
		case primary < 95:
			return StatusAlert
		}
		return StatusNormal

	case TypeTemperature:
		switch {
		case primary < 35:
			return StatusAlert
		case primary >= 38:
			return StatusCritical
		case primary > 37.2:
			return StatusAlert
		}
		return StatusNormal
	}

	// Unknown types, and types with no defined thresholds (weight), are
	// always normal.
	return StatusNormal
}
