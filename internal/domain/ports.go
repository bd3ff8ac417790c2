package domain

import (
	"context"
	"time"
)

// TankRepository persists tanks. Find methods return (nil, nil) when nothing matches.
type TankRepository interface {
	FindByID(ctx context.Context, id int64) (*Tank, error)
	FindBySerialNumber(ctx context.Context, serial string) (*Tank, error)
	FindAll(ctx context.Context) ([]Tank, error)
	// Save inserts a transient tank and updates a persisted one. A persisted
	// tank whose row is gone is inserted again. A duplicate serial number
	// yields an error wrapping ErrConflict.
	Save(ctx context.Context, tank *Tank) (*Tank, error)
	// Delete reports false when no tank had the id.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ReadingRepository persists readings. All listings are ordered by
// ReadingTimestamp, most recent first.
type ReadingRepository interface {
	FindByID(ctx context.Context, id int64) (*TankReading, error)
	Save(ctx context.Context, reading *TankReading) (*TankReading, error)
	FindByTankID(ctx context.Context, tankID int64) ([]TankReading, error)
	// FindByTankIDAndDateRange includes readings taken exactly at start or end.
	FindByTankIDAndDateRange(ctx context.Context, tankID int64, start, end time.Time) ([]TankReading, error)
	FindLatestByTankID(ctx context.Context, tankID int64) (*TankReading, error)
	// FindOlderThan returns exactly the readings DeleteOldReadings would remove.
	FindOlderThan(ctx context.Context, tankID int64, olderThan time.Time) ([]TankReading, error)
	// DeleteOldReadings removes readings taken strictly before olderThan.
	DeleteOldReadings(ctx context.Context, tankID int64, olderThan time.Time) (int64, error)
}
