package insights

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitaltrack/vitaltrack/internal/domain/vitals"
	"github.com/vitaltrack/vitaltrack/internal/platform/genai"
)

// fakeGenerator captures the prompt and replies with canned text.
type fakeGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeGenerator) GenerateFromDocument(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

// memVitalsRepo holds just enough state to feed the narrative prompt.
type memVitalsRepo struct {
	latest  map[uuid.UUID]*vitals.VitalRecord
	history map[uuid.UUID][]*vitals.VitalRecord
}

func newMemVitalsRepo() *memVitalsRepo {
	return &memVitalsRepo{
		latest:  make(map[uuid.UUID]*vitals.VitalRecord),
		history: make(map[uuid.UUID][]*vitals.VitalRecord),
	}
}

func (m *memVitalsRepo) UpdateLatest(_ context.Context, userID uuid.UUID, rec *vitals.VitalRecord) error {
	cp := *rec
	m.latest[userID] = &cp
	return nil
}

func (m *memVitalsRepo) AddHistory(_ context.Context, userID uuid.UUID, rec *vitals.VitalRecord) error {
	cp := *rec
	cp.ID = uuid.New()
	m.history[userID] = append(m.history[userID], &cp)
	return nil
}

func (m *memVitalsRepo) GetLatest(_ context.Context, userID uuid.UUID) (*vitals.VitalRecord, error) {
	if rec, ok := m.latest[userID]; ok {
		cp := *rec
		return &cp, nil
	}
	return &vitals.VitalRecord{UserID: userID}, nil
}

func (m *memVitalsRepo) ListHistory(_ context.Context, userID uuid.UUID, limit, offset int) ([]*vitals.VitalRecord, error) {
	entries := m.history[userID]
	if offset < len(entries) {
		entries = entries[offset:]
	} else {
		entries = nil
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memVitalsRepo) CountHistory(_ context.Context, userID uuid.UUID) (int, error) {
	return len(m.history[userID]), nil
}

func (m *memVitalsRepo) ListRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*vitals.VitalRecord, error) {
	return m.history[userID], nil
}

func (m *memVitalsRepo) DeleteLatest(_ context.Context, userID uuid.UUID) error {
	delete(m.latest, userID)
	return nil
}

func newTestService(gen *fakeGenerator) (*Service, *vitals.Service) {
	vsvc := vitals.NewService(newMemVitalsRepo())
	return NewService(gen, vsvc), vsvc
}

func TestNarrative_PromptCarriesReadings(t *testing.T) {
	gen := &fakeGenerator{response: "Your vitals look steady this week."}
	svc, vsvc := newTestService(gen)
	uid := uuid.New()

	sys, dia := 150, 95
	if _, err := vsvc.Record(context.Background(), uid, &vitals.VitalRecord{
		BPSystolic:  &sys,
		BPDiastolic: &dia,
		Date:        time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	text, err := svc.Narrative(context.Background(), uid)
	if err != nil {
		t.Fatalf("Narrative failed: %v", err)
	}
	if text != gen.response {
		t.Errorf("narrative = %q, want the model text untouched", text)
	}
	if !strings.Contains(gen.lastPrompt, "BP 150/95 mmHg") {
		t.Errorf("prompt should carry the reading, got:\n%s", gen.lastPrompt)
	}
	if !strings.Contains(gen.lastPrompt, "not medical advice") {
		t.Error("prompt should ask for the disclaimer")
	}
}

func TestNarrative_EmptyHistory(t *testing.T) {
	gen := &fakeGenerator{response: "No readings yet."}
	svc, _ := newTestService(gen)

	if _, err := svc.Narrative(context.Background(), uuid.New()); err != nil {
		t.Fatalf("empty history should still produce a narrative, got %v", err)
	}
}

func TestNarrative_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: genai.ErrUnavailable}
	svc, _ := newTestService(gen)

	if _, err := svc.Narrative(context.Background(), uuid.New()); !errors.Is(err, genai.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestHandler_Narrative(t *testing.T) {
	gen := &fakeGenerator{response: "All good."}
	svc, _ := newTestService(gen)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("auth_user_id", uuid.New())

	if err := h.Narrative(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "All good.") {
		t.Error("response should carry the narrative")
	}
}

func TestHandler_Narrative_Unavailable(t *testing.T) {
	gen := &fakeGenerator{err: genai.ErrUnavailable}
	svc, _ := newTestService(gen)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("auth_user_id", uuid.New())

	err := h.Narrative(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}
