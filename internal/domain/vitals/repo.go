package vitals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPersistence wraps backend failures on the strict paths (latest-snapshot
// reads and all writes). The lenient history reads never return it; they log
// the fault and hand back an empty slice so dashboards keep rendering.
var ErrPersistence = errors.New("vitals: persistence failure")

// Repository is the storage contract for the per-user latest snapshot and
// the append-only history sequence. The two writes are independent;
// transactional composition lives in the Service.
type Repository interface {
	// UpdateLatest fully replaces the user's singleton latest snapshot.
	UpdateLatest(ctx context.Context, userID uuid.UUID, rec *VitalRecord) error
	// AddHistory appends an independently-identified entry to the user's
	// history. The store assigns the ID.
	AddHistory(ctx context.Context, userID uuid.UUID, rec *VitalRecord) error
	// GetLatest returns the latest snapshot, or an empty record shape when
	// the user has none. Absence is a normal state, not an error.
	GetLatest(ctx context.Context, userID uuid.UUID) (*VitalRecord, error)
	// ListHistory returns history entries ordered by date descending,
	// skipping offset entries and capped at limit when limit > 0.
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*VitalRecord, error)
	// CountHistory returns the user's total history size. Like the listing
	// reads it is lenient: a backend fault logs and counts as zero.
	CountHistory(ctx context.Context, userID uuid.UUID) (int, error)
	// ListRange returns history entries whose date falls in the closed
	// interval [start, end], ordered by date descending.
	ListRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*VitalRecord, error)
	// DeleteLatest removes the singleton snapshot.
	DeleteLatest(ctx context.Context, userID uuid.UUID) error
}

// TxRepository is implemented by repositories that can run both halves of a
// record write atomically.
type TxRepository interface {
	Repository
	// RecordTx replaces the latest snapshot and appends the history entry
	// in a single transaction.
	RecordTx(ctx context.Context, userID uuid.UUID, latest, entry *VitalRecord) error
}
