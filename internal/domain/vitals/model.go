package vitals

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Source tags where a measurement came from. It is a provenance hint only
// and is not validated against the caller's identity.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDevice   Source = "device"
	SourceImported Source = "imported"
)

var validSources = map[Source]bool{
	SourceManual: true, SourceDevice: true, SourceImported: true,
}

// VitalType identifies one tracked vital sign. Types are a closed set; the
// display metadata for each lives in the cardSpecs table in dashboard.go.
type VitalType string

const (
	TypeBloodPressure    VitalType = "bloodPressure"
	TypeHeartRate        VitalType = "heartRate"
	TypePulseRate        VitalType = "pulseRate"
	TypeBloodSugar       VitalType = "bloodSugar"
	TypeTemperature      VitalType = "temperature"
	TypeOxygenSaturation VitalType = "oxygenSaturation"
	TypeRespirationRate  VitalType = "respirationRate"
	TypeWeight           VitalType = "weight"
)

// VitalRecord is one measurement snapshot. Every measurement field is
// optional; a record that populates none of them is considered empty and is
// rejected by the write paths that require at least one vital.
type VitalRecord struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	UserID             uuid.UUID `db:"user_id" json:"user_id"`
	Date               time.Time `db:"date" json:"date"`
	BPSystolic         *int      `db:"bp_systolic" json:"bloodPressureSystolic,omitempty"`
	BPDiastolic        *int      `db:"bp_diastolic" json:"bloodPressureDiastolic,omitempty"`
	BloodSugarFasting  *float64  `db:"blood_sugar_fasting" json:"bloodSugarFasting,omitempty"`
	BloodSugarPostMeal *float64  `db:"blood_sugar_post_meal" json:"bloodSugarPostMeal,omitempty"`
	HeartRate          *int      `db:"heart_rate" json:"heartRate,omitempty"`
	PulseRate          *int      `db:"pulse_rate" json:"pulseRate,omitempty"`
	Temperature        *float64  `db:"temperature" json:"temperature,omitempty"`
	OxygenSaturation   *float64  `db:"oxygen_saturation" json:"oxygenSaturation,omitempty"`
	RespirationRate    *int      `db:"respiration_rate" json:"respirationRate,omitempty"`
	Weight             *float64  `db:"weight" json:"weight,omitempty"`
	Height             *float64  `db:"height" json:"height,omitempty"`
	BMI                *float64  `db:"bmi" json:"bmi,omitempty"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	Source             Source    `db:"source" json:"source"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// HasVitals reports whether at least one measurement field is populated.
// Notes alone do not count as a vital.
func (r *VitalRecord) HasVitals() bool {
	return r.BPSystolic != nil || r.BPDiastolic != nil ||
		r.BloodSugarFasting != nil || r.BloodSugarPostMeal != nil ||
		r.HeartRate != nil || r.PulseRate != nil ||
		r.Temperature != nil || r.OxygenSaturation != nil ||
		r.RespirationRate != nil || r.Weight != nil ||
		r.Height != nil || r.BMI != nil
}

// Sanitize drops measurement fields that are non-finite or not strictly
// positive. Zero and negative readings are treated as absent.
func (r *VitalRecord) Sanitize() {
	r.BPSystolic = keepInt(r.BPSystolic)
	r.BPDiastolic = keepInt(r.BPDiastolic)
	r.BloodSugarFasting = keepFloat(r.BloodSugarFasting)
	r.BloodSugarPostMeal = keepFloat(r.BloodSugarPostMeal)
	r.HeartRate = keepInt(r.HeartRate)
	r.PulseRate = keepInt(r.PulseRate)
	r.Temperature = keepFloat(r.Temperature)
	r.OxygenSaturation = keepFloat(r.OxygenSaturation)
	r.RespirationRate = keepInt(r.RespirationRate)
	r.Weight = keepFloat(r.Weight)
	r.Height = keepFloat(r.Height)
	r.BMI = keepFloat(r.BMI)
}

// Merge copies every populated measurement field of p over r, along with the
// date, source and notes when p carries them. The merged record is what gets
// written back as the full-replace latest snapshot, so stale and fresh fields
// are blended here in application code, never in the store.
func (r *VitalRecord) Merge(p *VitalRecord) {
	if p.BPSystolic != nil {
		r.BPSystolic = p.BPSystolic
	}
	if p.BPDiastolic != nil {
		r.BPDiastolic = p.BPDiastolic
	}
	if p.BloodSugarFasting != nil {
		r.BloodSugarFasting = p.BloodSugarFasting
	}
	if p.BloodSugarPostMeal != nil {
		r.BloodSugarPostMeal = p.BloodSugarPostMeal
	}
	if p.HeartRate != nil {
		r.HeartRate = p.HeartRate
	}
	if p.PulseRate != nil {
		r.PulseRate = p.PulseRate
	}
	if p.Temperature != nil {
		r.Temperature = p.Temperature
	}
	if p.OxygenSaturation != nil {
		r.OxygenSaturation = p.OxygenSaturation
	}
	if p.RespirationRate != nil {
		r.RespirationRate = p.RespirationRate
	}
	if p.Weight != nil {
		r.Weight = p.Weight
	}
	if p.Height != nil {
		r.Height = p.Height
	}
	if p.BMI != nil {
		r.BMI = p.BMI
	}
	if p.Notes != nil {
		r.Notes = p.Notes
	}
	if !p.Date.IsZero() {
		r.Date = p.Date
	}
	if p.Source != "" {
		r.Source = p.Source
	}
}

// ApplyDefaults fills the date and source when the caller omitted them.
func (r *VitalRecord) ApplyDefaults(now time.Time) {
	if r.Date.IsZero() {
		r.Date = now
	}
	if r.Source == "" || !validSources[r.Source] {
		r.Source = SourceManual
	}
}

func keepInt(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func keepFloat(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return nil
	}
	return v
}
