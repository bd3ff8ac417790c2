package service

import (
	"context"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

// ReadingStats summarises a tank's readings over a time range.
type ReadingStats struct {
	TankID            int64      `json:"tank_id"`
	Count             int        `json:"count"`
	AverageVolume     float64    `json:"average_volume"`
	MinVolume         float64    `json:"min_volume"`
	MaxVolume         float64    `json:"max_volume"`
	AveragePercentage float64    `json:"average_percentage"`
	MovingAverage     []float64  `json:"moving_average"`
	First             *time.Time `json:"first_reading_at"`
	Last              *time.Time `json:"last_reading_at"`
}

// Stats aggregates readings taken within [start, end]. A range with no
// readings yields zero values.
func (s *ReadingService) Stats(ctx context.Context, tankID int64, start, end time.Time) (*ReadingStats, error) {
	readings, err := s.ListInRange(ctx, tankID, start, end)
	if err != nil {
		return nil, err
	}
	return summarize(tankID, readings, s.statsWindow), nil
}

// summarize expects readings newest first, as returned by the repositories.
func summarize(tankID int64, readings []domain.TankReading, window int) *ReadingStats {
	stats := &ReadingStats{TankID: tankID, Count: len(readings), MovingAverage: []float64{}}
	if len(readings) == 0 {
		return stats
	}

	volumes := make([]aggregator.Point, len(readings))
	percentages := make([]aggregator.Point, len(readings))
	stats.MinVolume = readings[0].Volume
	stats.MaxVolume = readings[0].Volume
	// oldest first for the moving average
	for i := range readings {
		r := readings[len(readings)-1-i]
		volumes[i] = aggregator.Point{Value: r.Volume, Timestamp: r.ReadingTimestamp}
		percentages[i] = aggregator.Point{Value: r.Percentage, Timestamp: r.ReadingTimestamp}
		if r.Volume < stats.MinVolume {
			stats.MinVolume = r.Volume
		}
		if r.Volume > stats.MaxVolume {
			stats.MaxVolume = r.Volume
		}
	}

	stats.AverageVolume = aggregator.Average(volumes)
	stats.AveragePercentage = aggregator.Average(percentages)
	if len(volumes) >= window {
		stats.MovingAverage = aggregator.MovingAverage(volumes, window)
	}

	first := readings[len(readings)-1].ReadingTimestamp
	last := readings[0].ReadingTimestamp
	stats.First, stats.Last = &first, &last
	return stats
}
