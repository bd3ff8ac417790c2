// Package repository implements the domain storage ports on PostgreSQL and in memory.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

// Repos bundles one implementation of each storage port.
type Repos struct {
	Tanks    domain.TankRepository
	Readings domain.ReadingRepository
}

// New returns PostgreSQL-backed repositories.
func New(db *sqlx.DB) *Repos {
	return &Repos{
		Tanks:    &TankStore{db: db},
		Readings: &ReadingStore{db: db},
	}
}

// NewMemory returns repositories that share one in-process store.
func NewMemory() *Repos {
	s := newMemoryStore()
	return &Repos{
		Tanks:    &MemoryTanks{store: s},
		Readings: &MemoryReadings{store: s},
	}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps PostgreSQL constraint violations onto domain failure categories.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateSerial)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrTankNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
