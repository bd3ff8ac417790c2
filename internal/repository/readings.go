package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

const readingColumns = `id, tank_id, liquid_level, volume, percentage, temperature, reading_timestamp, raw_data, created_at, updated_at`

// readingRow mirrors tank_readings. raw_data is scanned as bytes so the stored
// JSON text comes back untouched.
type readingRow struct {
	ID               int64     `db:"id"`
	TankID           int64     `db:"tank_id"`
	LiquidLevel      float64   `db:"liquid_level"`
	Volume           float64   `db:"volume"`
	Percentage       float64   `db:"percentage"`
	Temperature      *float64  `db:"temperature"`
	ReadingTimestamp time.Time `db:"reading_timestamp"`
	RawData          []byte    `db:"raw_data"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r readingRow) toDomain() domain.TankReading {
	var raw json.RawMessage
	if len(r.RawData) > 0 {
		raw = append(json.RawMessage(nil), r.RawData...)
	}
	return domain.TankReading{
		ID:               r.ID,
		TankID:           r.TankID,
		LiquidLevel:      r.LiquidLevel,
		Volume:           r.Volume,
		Percentage:       r.Percentage,
		Temperature:      r.Temperature,
		RawData:          raw,
		ReadingTimestamp: r.ReadingTimestamp,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// rawDataArg passes the payload as text so the json column keeps its exact bytes.
func rawDataArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// ReadingStore implements domain.ReadingRepository on PostgreSQL.
type ReadingStore struct {
	db *sqlx.DB
}

func (s *ReadingStore) FindByID(ctx context.Context, id int64) (*domain.TankReading, error) {
	return s.findOne(ctx, "find reading", `SELECT `+readingColumns+` FROM tank_readings WHERE id = $1`, id)
}

func (s *ReadingStore) FindLatestByTankID(ctx context.Context, tankID int64) (*domain.TankReading, error) {
	return s.findOne(ctx, "find latest reading", `
		SELECT `+readingColumns+` FROM tank_readings
		WHERE tank_id = $1
		ORDER BY reading_timestamp DESC, id DESC
		LIMIT 1`, tankID)
}

func (s *ReadingStore) findOne(ctx context.Context, op, query string, args ...any) (*domain.TankReading, error) {
	var row readingRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(op, err)
	}
	r := row.toDomain()
	return &r, nil
}

func (s *ReadingStore) FindByTankID(ctx context.Context, tankID int64) ([]domain.TankReading, error) {
	return s.list(ctx, "list readings", `
		SELECT `+readingColumns+` FROM tank_readings
		WHERE tank_id = $1
		ORDER BY reading_timestamp DESC, id DESC`, tankID)
}

func (s *ReadingStore) FindByTankIDAndDateRange(ctx context.Context, tankID int64, start, end time.Time) ([]domain.TankReading, error) {
	return s.list(ctx, "list readings in range", `
		SELECT `+readingColumns+` FROM tank_readings
		WHERE tank_id = $1 AND reading_timestamp BETWEEN $2 AND $3
		ORDER BY reading_timestamp DESC, id DESC`, tankID, start, end)
}

func (s *ReadingStore) FindOlderThan(ctx context.Context, tankID int64, olderThan time.Time) ([]domain.TankReading, error) {
	return s.list(ctx, "list readings older than", `
		SELECT `+readingColumns+` FROM tank_readings
		WHERE tank_id = $1 AND reading_timestamp < $2
		ORDER BY reading_timestamp DESC, id DESC`, tankID, olderThan)
}

func (s *ReadingStore) list(ctx context.Context, op, query string, args ...any) ([]domain.TankReading, error) {
	var rows []readingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, translate(op, err)
	}
	out := make([]domain.TankReading, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (s *ReadingStore) Save(ctx context.Context, reading *domain.TankReading) (*domain.TankReading, error) {
	if reading.IsPersisted() {
		res, err := s.db.ExecContext(ctx, `
			UPDATE tank_readings SET tank_id = $2, liquid_level = $3, volume = $4, percentage = $5,
				temperature = $6, reading_timestamp = $7, raw_data = $8, updated_at = $9
			WHERE id = $1`,
			reading.ID, reading.TankID, reading.LiquidLevel, reading.Volume, reading.Percentage,
			reading.Temperature, reading.ReadingTimestamp, rawDataArg(reading.RawData), reading.UpdatedAt)
		if err != nil {
			return nil, translate("update reading", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, translate("update reading", err)
		} else if n == 1 {
			return reading, nil
		}
	}

	saved := *reading
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO tank_readings (tank_id, liquid_level, volume, percentage, temperature, reading_timestamp, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		reading.TankID, reading.LiquidLevel, reading.Volume, reading.Percentage, reading.Temperature,
		reading.ReadingTimestamp, rawDataArg(reading.RawData), reading.CreatedAt, reading.UpdatedAt).Scan(&saved.ID)
	if err != nil {
		return nil, translate("insert reading", err)
	}
	return &saved, nil
}

func (s *ReadingStore) DeleteOldReadings(ctx context.Context, tankID int64, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tank_readings WHERE tank_id = $1 AND reading_timestamp < $2`, tankID, olderThan)
	if err != nil {
		return 0, translate("prune readings", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translate("prune readings", err)
	}
	return n, nil
}
