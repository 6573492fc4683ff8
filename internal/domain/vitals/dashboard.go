package vitals

import (
	"fmt"
	"math"
	"time"
)

// VitalCard is the per-type dashboard view model. It is derived fresh on
// every dashboard build and never persisted.
type VitalCard struct {
	Type    VitalType `json:"type"`
	Label   string    `json:"label"`
	Unit    string    `json:"unit"`
	Icon    string    `json:"icon"`
	Value   string    `json:"value"`
	Status  Status    `json:"status"`
	Recency string    `json:"recency"`
}

type cardSpec struct {
	typ   VitalType
	label string
	unit  string
	icon  string
}

// Fixed card order for the dashboard. Display metadata lives here rather
// than in free-string lookups.
var cardSpecs = []cardSpec{
	{TypeBloodPressure, "Blood Pressure", "mmHg", "blood-pressure"},
	{TypeHeartRate, "Heart Rate", "bpm", "heart-rate"},
	{TypeBloodSugar, "Blood Sugar", "mg/dL", "blood-sugar"},
	{TypeTemperature, "Temperature", "°C", "temperature"},
	{TypeOxygenSaturation, "Oxygen Saturation", "%", "oxygen"},
	{TypeWeight, "Weight", "kg", "weight"},
}

// BuildDashboard composes the latest snapshot into one card per tracked
// type. All cards share the snapshot's single date, since the snapshot is
// one merged record rather than per-field timestamps.
func BuildDashboard(latest *VitalRecord, now time.Time) []VitalCard {
	recency := "Just now"
	if latest != nil && !latest.Date.IsZero() {
		recency = TimeSince(latest.Date, now)
	}

	cards := make([]VitalCard, 0, len(cardSpecs))
	for _, spec := range cardSpecs {
		card := VitalCard{
			Type:    spec.typ,
			Label:   spec.label,
			Unit:    spec.unit,
			Icon:    spec.icon,
			Recency: recency,
		}
		card.Value, card.Status = cardValue(spec.typ, latest)
		cards = append(cards, card)
	}
	return cards
}

func cardValue(t VitalType, r *VitalRecord) (string, Status) {
	if r == nil {
		r = &VitalRecord{}
	}
	switch t {
	case TypeBloodPressure:
		if r.BPSystolic == nil || r.BPDiastolic == nil {
			return "--/--", StatusNormal
		}
		return fmt.Sprintf("%d/%d", *r.BPSystolic, *r.BPDiastolic),
			Evaluate(TypeBloodPressure, float64(*r.BPSystolic), float64(*r.BPDiastolic))
	case TypeHeartRate:
		if r.HeartRate == nil {
			return "--", StatusNormal
		}
		return fmt.Sprintf("%d", *r.HeartRate), Evaluate(TypeHeartRate, float64(*r.HeartRate), math.NaN())
	case TypeBloodSugar:
		if r.BloodSugarFasting == nil {
			return "--", StatusNormal
		}
		return fmt.Sprintf("%d", int(*r.BloodSugarFasting)), Evaluate(TypeBloodSugar, *r.BloodSugarFasting, math.NaN())
	case TypeTemperature:
		if r.Temperature == nil {
			return "--", StatusNormal
		}
		return fmt.Sprintf("%.1f", *r.Temperature), Evaluate(TypeTemperature, *r.Temperature, math.NaN())
	case TypeOxygenSaturation:
		if r.OxygenSaturation == nil {
			return "--", StatusNormal
		}
		return fmt.Sprintf("%d", int(*r.OxygenSaturation)), Evaluate(TypeOxygenSaturation, *r.OxygenSaturation, math.NaN())
	case TypeWeight:
		if r.Weight == nil {
			return "--", StatusNormal
		}
		// No thresholds are defined for weight; the card is always normal.
		return fmt.Sprintf("%.1f", *r.Weight), StatusNormal
	}
	return "--", StatusNormal
}
