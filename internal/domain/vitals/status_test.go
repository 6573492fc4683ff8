package vitals

import (
	"math"
	"testing"
)

func TestEvaluate_BloodPressure(t *testing.T) {
	tests := []struct {
		name     string
		sys, dia float64
		want     Status
	}{
		{"textbook normal", 118, 78, StatusNormal},
		{"upper edge normal", 120, 80, StatusNormal},
		{"elevated systolic", 121, 80, StatusAlert},
		{"elevated diastolic", 120, 81, StatusAlert},
		{"hypertensive systolic", 140, 80, StatusCritical},
		{"hypertensive diastolic", 120, 90, StatusCritical},
		{"both high", 150, 95, StatusCritical},
		{"low systolic", 89, 70, StatusAlert},
		{"low diastolic", 110, 59, StatusAlert},
		{"hypotension wins over high diastolic", 89, 95, StatusAlert},
		{"hypotension wins over elevated", 85, 82, StatusAlert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(TypeBloodPressure, tt.sys, tt.dia); got != tt.want {
				t.Errorf("Evaluate(BP, %v, %v) = %v, want %v", tt.sys, tt.dia, got, tt.want)
			}
		})
	}
}

func TestEvaluate_BloodPressure_MissingHalf(t *testing.T) {
	if got := Evaluate(TypeBloodPressure, 150, math.NaN()); got != StatusNormal {
		t.Errorf("missing diastolic should read normal, got %v", got)
	}
	if got := Evaluate(TypeBloodPressure, math.NaN(), 95); got != StatusNormal {
		t.Errorf("missing systolic should read normal, got %v", got)
	}
}

func TestEvaluate_Temperature(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
	}{
		{34.9, StatusAlert},
		{35, StatusNormal},
		{36.6, StatusNormal},
		{37.2, StatusNormal},
		{37.3, StatusAlert},
		{37.9, StatusAlert},
		{38, StatusCritical},
		{38.1, StatusCritical},
	}
	for _, tt := range tests {
		if got := Evaluate(TypeTemperature, tt.value, math.NaN()); got != tt.want {
			t.Errorf("Evaluate(Temperature, %v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEvaluate_BloodSugar(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
	}{
		{69, StatusAlert},
		{70, StatusNormal},
		{99, StatusNormal},
		{100, StatusAlert},
		{125, StatusAlert},
		{126, StatusCritical},
	}
	for _, tt := range tests {
		if got := Evaluate(TypeBloodSugar, tt.value, math.NaN()); got != tt.want {
			t.Errorf("Evaluate(BloodSugar, %v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEvaluate_HeartRate(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
	}{
		{59, StatusAlert},
		{60, StatusNormal},
		{100, StatusNormal},
		{101, StatusAlert},
	}
	for _, tt := range tests {
		if got := Evaluate(TypeHeartRate, tt.value, math.NaN()); got != tt.want {
			t.Errorf("Evaluate(HeartRate, %v) = %v, want %v", tt.value, got, tt.want)
		}
		if got := Evaluate(TypePulseRate, tt.value, math.NaN()); got != tt.want {
			t.Errorf("Evaluate(PulseRate, %v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEvaluate_OxygenSaturation(t *testing.T) {
	tests := []struct {
		value float64
		want  Status
	}{
		{91.9, StatusCritical},
		{92, StatusAlert},
		{94.9, StatusAlert},
		{95, StatusNormal},
		{99, StatusNormal},
	}
	for _, tt := range tests {
		if got := Evaluate(TypeOxygenSaturation, tt.value, math.NaN()); got != tt.want {
			t.Errorf("Evaluate(OxygenSaturation, %v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEvaluate_NaNPrimary(t *testing.T) {
	types := []VitalType{
		TypeBloodPressure, TypeHeartRate, TypePulseRate, TypeBloodSugar,
		TypeTemperature, TypeOxygenSaturation, TypeWeight,
	}
	for _, typ := range types {
		if got := Evaluate(typ, math.NaN(), math.NaN()); got != StatusNormal {
			t.Errorf("Evaluate(%s, NaN) = %v, want normal", typ, got)
		}
	}
}

func TestEvaluate_UntrackedTypes(t *testing.T) {
	if got := Evaluate(TypeWeight, 500, math.NaN()); got != StatusNormal {
		t.Errorf("weight has no thresholds, got %v", got)
	}
	if got := Evaluate(VitalType("unknown"), 9999, math.NaN()); got != StatusNormal {
		t.Errorf("unknown type should read normal, got %v", got)
	}
}
