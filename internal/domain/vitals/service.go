package vitals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyRecord is returned when a write carries no measurement fields.
var ErrEmptyRecord = errors.New("vitals: record has no vital signs")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record merges the partial record into the user's current latest snapshot,
// replaces the snapshot, and appends a history entry. When the repository
// supports transactions the two writes are atomic; otherwise they are issued
// sequentially and a crash in between leaves the views eventually
// consistent, reconciled on the next dashboard read.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, partial *VitalRecord) (*VitalRecord, error) {
	if userID == uuid.Nil {
		return nil, errors.New("vitals: user id is required")
	}
	partial.Sanitize()
	if !partial.HasVitals() {
		return nil, ErrEmptyRecord
	}
	partial.ApplyDefaults(s.now())

	latest, err := s.repo.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest.Merge(partial)

	// The history entry is the merged snapshot at this point in time, so a
	// later range query reproduces what the dashboard showed.
	entry := *latest
	entry.ID = uuid.Nil

	if tx, ok := s.repo.(TxRepository); ok {
		if err := tx.RecordTx(ctx, userID, latest, &entry); err != nil {
			return nil, err
		}
		return latest, nil
	}
	if err := s.repo.UpdateLatest(ctx, userID, latest); err != nil {
		return nil, err
	}
	if err := s.repo.AddHistory(ctx, userID, &entry); err != nil {
		return nil, err
	}
	return latest, nil
}

// ReplaceLatest overwrites the latest snapshot without touching history.
func (s *Service) ReplaceLatest(ctx context.Context, userID uuid.UUID, rec *VitalRecord) error {
	rec.Sanitize()
	if !rec.HasVitals() {
		return ErrEmptyRecord
	}
	return s.repo.UpdateLatest(ctx, userID, rec)
}

func (s *Service) Latest(ctx context.Context, userID uuid.UUID) (*VitalRecord, error) {
	return s.repo.GetLatest(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*VitalRecord, error) {
	return s.repo.ListHistory(ctx, userID, limit, 0)
}

// HistoryPage returns one page of history plus the user's total entry count,
// so callers can expose offset pagination.
func (s *Service) HistoryPage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*VitalRecord, int, error) {
	items, err := s.repo.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountHistory(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) HistoryRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*VitalRecord, error) {
	return s.repo.ListRange(ctx, userID, start, end)
}

func (s *Service) ClearLatest(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteLatest(ctx, userID)
}

// Dashboard builds the fixed card set from the latest snapshot.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) ([]VitalCard, error) {
	latest, err := s.repo.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(latest, s.now()), nil
}

// RecordHeartRate feeds a single device reading through the same write path
// as manual entries. It is the sink for the BLE session.
func (s *Service) RecordHeartRate(ctx context.Context, userID uuid.UUID, bpm int) error {
	_, err := s.Record(ctx, userID, &VitalRecord{
		HeartRate: &bpm,
		Source:    SourceDevice,
	})
	return err
}
