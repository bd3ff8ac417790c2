package domain

import "math"

// VolumeCalculator converts a liquid level into liters for a given tank.
type VolumeCalculator interface {
	CalculateVolume(tank *Tank, liquidLevel float64) float64
}

// GeometricCalculator is the production VolumeCalculator.
type GeometricCalculator struct{}

func (GeometricCalculator) CalculateVolume(tank *Tank, liquidLevel float64) float64 {
	return CalculateVolume(tank, liquidLevel)
}

// CalculateVolume returns the liquid volume in liters. The level is clamped to
// [0, tank.Height]. Tanks with a diameter are treated as vertical cylinders;
// the rest scale capacity linearly with the level.
func CalculateVolume(tank *Tank, liquidLevel float64) float64 {
	level := clamp(liquidLevel, 0, math.Max(tank.Height, 0))

	if tank.Diameter != nil {
		radius := *tank.Diameter / 2
		cubicCm := math.Pi * radius * radius * level
		return cubicCm / 1000
	}

	if tank.Height <= 0 {
		return 0
	}
	return level * tank.Capacity / tank.Height
}

// FillPercentage expresses volume as a share of capacity, bounded to [0, 100].
// A non-positive capacity or a NaN volume yields 0.
func FillPercentage(volume, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return clamp(volume/capacity*100, 0, 100)
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
