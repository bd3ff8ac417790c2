package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

const tankColumns = `id, name, serial_number, capacity, height, diameter, location, is_active, current_level, created_at, updated_at`

// TankStore implements domain.TankRepository on PostgreSQL.
type TankStore struct {
	db *sqlx.DB
}

func (s *TankStore) FindByID(ctx context.Context, id int64) (*domain.Tank, error) {
	return s.findOne(ctx, "find tank", `SELECT `+tankColumns+` FROM tanks WHERE id = $1`, id)
}

func (s *TankStore) FindBySerialNumber(ctx context.Context, serial string) (*domain.Tank, error) {
	return s.findOne(ctx, "find tank by serial", `SELECT `+tankColumns+` FROM tanks WHERE serial_number = $1`, serial)
}

func (s *TankStore) findOne(ctx context.Context, op, query string, arg any) (*domain.Tank, error) {
	var t domain.Tank
	if err := s.db.GetContext(ctx, &t, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(op, err)
	}
	return &t, nil
}

func (s *TankStore) FindAll(ctx context.Context) ([]domain.Tank, error) {
	out := []domain.Tank{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+tankColumns+` FROM tanks ORDER BY id`); err != nil {
		return nil, translate("list tanks", err)
	}
	return out, nil
}

func (s *TankStore) Save(ctx context.Context, tank *domain.Tank) (*domain.Tank, error) {
	if tank.IsPersisted() {
		res, err := s.db.NamedExecContext(ctx, `
			UPDATE tanks SET name = :name, serial_number = :serial_number, capacity = :capacity,
				height = :height, diameter = :diameter, location = :location, is_active = :is_active,
				current_level = :current_level, updated_at = :updated_at
			WHERE id = :id`, tank)
		if err != nil {
			return nil, translate("update tank", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, translate("update tank", err)
		} else if n == 1 {
			return tank, nil
		}
	}

	rows, err := s.db.NamedQueryContext(ctx, `
		INSERT INTO tanks (name, serial_number, capacity, height, diameter, location, is_active, current_level, created_at, updated_at)
		VALUES (:name, :serial_number, :capacity, :height, :diameter, :location, :is_active, :current_level, :created_at, :updated_at)
		RETURNING id`, tank)
	if err != nil {
		return nil, translate("insert tank", err)
	}
	defer rows.Close()

	saved := *tank
	if rows.Next() {
		if err := rows.Scan(&saved.ID); err != nil {
			return nil, translate("insert tank", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, translate("insert tank", err)
	}
	return &saved, nil
}

func (s *TankStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tanks WHERE id = $1`, id)
	if err != nil {
		return false, translate("delete tank", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate("delete tank", err)
	}
	return n > 0, nil
}
