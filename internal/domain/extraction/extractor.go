// Package extraction turns a photographed or scanned medical document into a
// partial vitals record by prompting a vision-capable model and validating
// whatever JSON it returns.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vitaltrack/vitaltrack/internal/domain/vitals"
	"github.com/vitaltrack/vitaltrack/internal/platform/genai"
)

// ErrFormat means the model responded but the cleaned text was not valid
// JSON. It is deliberately distinct from genai.ErrUnavailable so the client
// can suggest retaking the photo rather than checking the connection.
var ErrFormat = errors.New("extraction: response is not valid JSON")

const prompt = `You are extracting vital signs from a medical document image.
Return ONLY a JSON object with any of these keys that appear in the document:
bloodPressureSystolic, bloodPressureDiastolic, bloodSugarFasting,
bloodSugarPostMeal, heartRate, pulseRate, temperature (Celsius),
oxygenSaturation, respirationRate, weight (kg), height (cm), notes.
Use plain numbers for measurements. Do NOT include laboratory results,
imaging reports, medication lists, or diagnoses. If the document contains no
vital signs, return {}. Return the JSON object only, with no surrounding
text.`

type Extractor struct {
	gen    genai.Generator
	logger zerolog.Logger
}

func NewExtractor(gen genai.Generator, logger zerolog.Logger) *Extractor {
	return &Extractor{gen: gen, logger: logger}
}

// Extract prompts the model with the document and cleans its response into a
// partial record. An empty record with a nil error means the document held
// no vital signs, which is a normal outcome for lab reports.
func (e *Extractor) Extract(ctx context.Context, doc []byte, mimeType string) (*vitals.VitalRecord, error) {
	raw, err := e.gen.GenerateFromDocument(ctx, prompt, doc, mimeType)
	if err != nil {
		return nil, err
	}

	cleaned := stripFences(raw)
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		e.logger.Warn().Str("response", truncate(cleaned, 200)).Msg("extraction response was not valid JSON")
		return nil, ErrFormat
	}

	rec := &vitals.VitalRecord{Source: vitals.SourceImported}
	for key, val := range fields {
		assign(rec, key, val)
	}
	return rec, nil
}

// stripFences removes a markdown code fence ("```json ... ```" or plain
// "```") wrapped around the response text.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// assign sets one cleaned field on the record. Numbers are kept only when
// finite and strictly positive; numeric strings are parsed and revalidated
// under the same rule; notes are kept verbatim when they are a string; every
// other shape is dropped silently.
func assign(rec *vitals.VitalRecord, key string, val interface{}) {
	if key == "notes" {
		if s, ok := val.(string); ok {
			rec.Notes = &s
		}
		return
	}

	num, ok := numeric(val)
	if !ok {
		return
	}

	switch key {
	case "bloodPressureSystolic":
		rec.BPSystolic = intPtr(num)
	case "bloodPressureDiastolic":
		rec.BPDiastolic = intPtr(num)
	case "bloodSugarFasting":
		rec.BloodSugarFasting = &num
	case "bloodSugarPostMeal":
		rec.BloodSugarPostMeal = &num
	case "heartRate":
		rec.HeartRate = intPtr(num)
	case "pulseRate":
		rec.PulseRate = intPtr(num)
	case "temperature":
		rec.Temperature = &num
	case "oxygenSaturation":
		rec.OxygenSaturation = &num
	case "respirationRate":
		rec.RespirationRate = intPtr(num)
	case "weight":
		rec.Weight = &num
	case "height":
		rec.Height = &num
	}
}

// numeric coerces a decoded JSON value to a valid measurement number.
func numeric(val interface{}) (float64, bool) {
	var n float64
	switch v := val.(type) {
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}

func intPtr(n float64) *int {
	i := int(n)
	if i <= 0 {
		return nil
	}
	return &i
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
