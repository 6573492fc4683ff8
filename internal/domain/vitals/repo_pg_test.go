package vitals

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// stubRows yields n zero-valued rows, then reports err from Err.
type stubRows struct {
	n   int
	err error
}

func (r *stubRows) Next() bool {
	if r.n == 0 {
		return false
	}
	r.n--
	return true
}

func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) Scan(dest ...any) error                       { return nil }
func (r *stubRows) Close()                                       {}
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func TestCollect_MidStreamFault(t *testing.T) {
	repo := &repoPG{logger: zerolog.Nop()}

	// Two rows arrive before the connection drops; the lenient contract
	// demands an empty result, not a silently truncated one.
	items, err := repo.collect(&stubRows{n: 2, err: errors.New("conn reset")}, uuid.New())
	if err != nil {
		t.Fatalf("lenient read must not error, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("interrupted read should return empty, got %d items", len(items))
	}
}

func TestCollect_CleanStream(t *testing.T) {
	repo := &repoPG{logger: zerolog.Nop()}

	items, err := repo.collect(&stubRows{n: 2}, uuid.New())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}
