package domain

import (
	"encoding/json"
	"time"
)

// TankReading is one timestamped liquid-level observation plus its derived volume
// and fill percentage. RawData is an opaque sensor payload kept byte-for-byte.
type TankReading struct {
	ID               int64           `json:"id"`
	TankID           int64           `json:"tank_id"`
	LiquidLevel      float64         `json:"liquid_level"`
	Volume           float64         `json:"volume"`
	Percentage       float64         `json:"percentage"`
	Temperature      *float64        `json:"temperature"`
	RawData          json.RawMessage `json:"raw_data,omitempty"`
	ReadingTimestamp time.Time       `json:"reading_timestamp"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ReadingSample is the sensor side of a reading before derivation.
type ReadingSample struct {
	LiquidLevel float64
	Temperature *float64
	RawData     json.RawMessage
	// Timestamp defaults to the current time when nil.
	Timestamp *time.Time
}

// NewTankReading derives volume and percentage for tank and returns a transient reading.
func NewTankReading(tank *Tank, calc VolumeCalculator, sample ReadingSample) *TankReading {
	now := clock.Now()
	observed := now
	if sample.Timestamp != nil {
		observed = *sample.Timestamp
	}
	volume := calc.CalculateVolume(tank, sample.LiquidLevel)
	return &TankReading{
		ID:               UnassignedID,
		TankID:           tank.ID,
		LiquidLevel:      sample.LiquidLevel,
		Volume:           volume,
		Percentage:       FillPercentage(volume, tank.Capacity),
		Temperature:      sample.Temperature,
		RawData:          sample.RawData,
		ReadingTimestamp: observed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (r *TankReading) IsPersisted() bool { return r.ID != UnassignedID }
