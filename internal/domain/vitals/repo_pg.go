package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepoPG returns the PostgreSQL-backed vitals repository. The logger is
// used only on the lenient read paths, where faults are swallowed into an
// empty result.
func NewRepoPG(pool *pgxpool.Pool, logger zerolog.Logger) TxRepository {
	return &repoPG{pool: pool, logger: logger}
}

const recCols = `id, user_id, date, bp_systolic, bp_diastolic,
	blood_sugar_fasting, blood_sugar_post_meal, heart_rate, pulse_rate,
	temperature, oxygen_saturation, respiration_rate, weight, height, bmi,
	notes, source, created_at`

func scanRecord(row pgx.Row) (*VitalRecord, error) {
	var r VitalRecord
	err := row.Scan(&r.ID, &r.UserID, &r.Date, &r.BPSystolic, &r.BPDiastolic,
		&r.BloodSugarFasting, &r.BloodSugarPostMeal, &r.HeartRate, &r.PulseRate,
		&r.Temperature, &r.OxygenSaturation, &r.RespirationRate, &r.Weight,
		&r.Height, &r.BMI, &r.Notes, &r.Source, &r.CreatedAt)
	return &r, err
}

func (p *repoPG) updateLatest(ctx context.Context, q queryable, userID uuid.UUID, rec *VitalRecord) error {
	rec.UserID = userID
	rec.ApplyDefaults(time.Now())
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO latest_vitals (id, user_id, date, bp_systolic, bp_diastolic,
			blood_sugar_fasting, blood_sugar_post_meal, heart_rate, pulse_rate,
			temperature, oxygen_saturation, respiration_rate, weight, height, bmi,
			notes, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id, date = EXCLUDED.date,
			bp_systolic = EXCLUDED.bp_systolic, bp_diastolic = EXCLUDED.bp_diastolic,
			blood_sugar_fasting = EXCLUDED.blood_sugar_fasting,
			blood_sugar_post_meal = EXCLUDED.blood_sugar_post_meal,
			heart_rate = EXCLUDED.heart_rate, pulse_rate = EXCLUDED.pulse_rate,
			temperature = EXCLUDED.temperature,
			oxygen_saturation = EXCLUDED.oxygen_saturation,
			respiration_rate = EXCLUDED.respiration_rate,
			weight = EXCLUDED.weight, height = EXCLUDED.height, bmi = EXCLUDED.bmi,
			notes = EXCLUDED.notes, source = EXCLUDED.source`,
		rec.ID, rec.UserID, rec.Date, rec.BPSystolic, rec.BPDiastolic,
		rec.BloodSugarFasting, rec.BloodSugarPostMeal, rec.HeartRate, rec.PulseRate,
		rec.Temperature, rec.OxygenSaturation, rec.RespirationRate, rec.Weight,
		rec.Height, rec.BMI, rec.Notes, rec.Source)
	if err != nil {
		return fmt.Errorf("%w: update latest: %v", ErrPersistence, err)
	}
	return nil
}

func (p *repoPG) addHistory(ctx context.Context, q queryable, userID uuid.UUID, rec *VitalRecord) error {
	rec.ID = uuid.New()
	rec.UserID = userID
	rec.ApplyDefaults(time.Now())
	_, err := q.Exec(ctx, `
		INSERT INTO vitals_history (id, user_id, date, bp_systolic, bp_diastolic,
			blood_sugar_fasting, blood_sugar_post_meal, heart_rate, pulse_rate,
			temperature, oxygen_saturation, respiration_rate, weight, height, bmi,
			notes, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		rec.ID, rec.UserID, rec.Date, rec.BPSystolic, rec.BPDiastolic,
		rec.BloodSugarFasting, rec.BloodSugarPostMeal, rec.HeartRate, rec.PulseRate,
		rec.Temperature, rec.OxygenSaturation, rec.RespirationRate, rec.Weight,
		rec.Height, rec.BMI, rec.Notes, rec.Source)
	if err != nil {
		return fmt.Errorf("%w: add history: %v", ErrPersistence, err)
	}
	return nil
}

func (p *repoPG) UpdateLatest(ctx context.Context, userID uuid.UUID, rec *VitalRecord) error {
	return p.updateLatest(ctx, p.pool, userID, rec)
}

func (p *repoPG) AddHistory(ctx context.Context, userID uuid.UUID, rec *VitalRecord) error {
	return p.addHistory(ctx, p.pool, userID, rec)
}

// RecordTx performs the latest replace and the history append atomically.
func (p *repoPG) RecordTx(ctx context.Context, userID uuid.UUID, latest, entry *VitalRecord) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if err := p.updateLatest(ctx, tx, userID, latest); err != nil {
		return err
	}
	if err := p.addHistory(ctx, tx, userID, entry); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}
	return nil
}

func (p *repoPG) GetLatest(ctx context.Context, userID uuid.UUID) (*VitalRecord, error) {
	rec, err := scanRecord(p.pool.QueryRow(ctx,
		`SELECT `+recCols+` FROM latest_vitals WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		// New users have no snapshot yet; hand back an empty shape.
		return &VitalRecord{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get latest: %v", ErrPersistence, err)
	}
	return rec, nil
}

func (p *repoPG) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*VitalRecord, error) {
	sql := `SELECT ` + recCols + ` FROM vitals_history WHERE user_id = $1 ORDER BY date DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		sql += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", userID.String()).Msg("vitals history read failed; returning empty")
		return []*VitalRecord{}, nil
	}
	defer rows.Close()
	return p.collect(rows, userID)
}

func (p *repoPG) ListRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*VitalRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+recCols+` FROM vitals_history
		WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC`,
		userID, start, end)
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", userID.String()).Msg("vitals range read failed; returning empty")
		return []*VitalRecord{}, nil
	}
	defer rows.Close()
	return p.collect(rows, userID)
}

func (p *repoPG) CountHistory(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM vitals_history WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", userID.String()).Msg("vitals history count failed; returning zero")
		return 0, nil
	}
	return n, nil
}

func (p *repoPG) collect(rows pgx.Rows, userID uuid.UUID) ([]*VitalRecord, error) {
	items := []*VitalRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			p.logger.Error().Err(err).Str("user_id", userID.String()).Msg("vitals history scan failed; returning empty")
			return []*VitalRecord{}, nil
		}
		items = append(items, rec)
	}
	// A mid-stream fault surfaces here, not from Next; without this check a
	// dropped connection would pass off a truncated list as the full history.
	if err := rows.Err(); err != nil {
		p.logger.Error().Err(err).Str("user_id", userID.String()).Msg("vitals history read interrupted; returning empty")
		return []*VitalRecord{}, nil
	}
	return items, nil
}

func (p *repoPG) DeleteLatest(ctx context.Context, userID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM latest_vitals WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: delete latest: %v", ErrPersistence, err)
	}
	return nil
}
