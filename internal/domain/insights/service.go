// Package insights produces short narrative summaries of a user's vitals by
// prompting the text model with the latest snapshot and recent history.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack/internal/domain/vitals"
	"github.com/vitaltrack/vitaltrack/internal/platform/genai"
)

const historyWindow = 14 // entries rendered into the prompt

type Service struct {
	gen genai.Generator
	svc *vitals.Service
}

func NewService(gen genai.Generator, svc *vitals.Service) *Service {
	return &Service{gen: gen, svc: svc}
}

// Narrative returns a prose summary of the user's recent vitals. The model
// is asked for plain text, so the response is passed through untouched.
func (s *Service) Narrative(ctx context.Context, userID uuid.UUID) (string, error) {
	latest, err := s.svc.Latest(ctx, userID)
	if err != nil {
		return "", err
	}
	history, err := s.svc.History(ctx, userID, historyWindow)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a health assistant. Summarize the following vital-sign ")
	b.WriteString("readings for the user in 3-5 friendly sentences. Mention trends ")
	b.WriteString("and anything outside typical ranges, and remind the user that ")
	b.WriteString("this is not medical advice.\n\nCurrent snapshot:\n")
	writeRecord(&b, latest)
	b.WriteString("\nRecent history (newest first):\n")
	for _, r := range history {
		writeRecord(&b, r)
	}

	return s.gen.GenerateText(ctx, b.String())
}

func writeRecord(b *strings.Builder, r *vitals.VitalRecord) {
	if r == nil {
		return
	}
	if !r.Date.IsZero() {
		fmt.Fprintf(b, "- %s:", r.Date.Format(time.RFC3339))
	} else {
		b.WriteString("-")
	}
	if r.BPSystolic != nil && r.BPDiastolic != nil {
		fmt.Fprintf(b, " BP %d/%d mmHg;", *r.BPSystolic, *r.BPDiastolic)
	}
	if r.HeartRate != nil {
		fmt.Fprintf(b, " HR %d bpm;", *r.HeartRate)
	}
	if r.BloodSugarFasting != nil {
		fmt.Fprintf(b, " fasting sugar %.0f mg/dL;", *r.BloodSugarFasting)
	}
	if r.Temperature != nil {
		fmt.Fprintf(b, " temp %.1f C;", *r.Temperature)
	}
	if r.OxygenSaturation != nil {
		fmt.Fprintf(b, " SpO2 %.0f%%;", *r.OxygenSaturation)
	}
	if r.Weight != nil {
		fmt.Fprintf(b, " weight %.1f kg;", *r.Weight)
	}
	b.WriteString("\n")
}
