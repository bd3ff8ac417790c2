package domain

import "time"

// UnassignedID marks an entity that storage has not persisted yet.
const UnassignedID int64 = 0

// Tank is a physical vessel with known geometry and declared capacity.
//
// Capacity is in liters; Height, Diameter and CurrentLevel are in centimeters.
// A nil Diameter selects the proportional volume formula.
type Tank struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	SerialNumber string    `db:"serial_number" json:"serial_number"`
	Capacity     float64   `db:"capacity" json:"capacity"`
	Height       float64   `db:"height" json:"height"`
	Diameter     *float64  `db:"diameter" json:"diameter"`
	Location     *string   `db:"location" json:"location"`
	Active       bool      `db:"is_active" json:"is_active"`
	CurrentLevel *float64  `db:"current_level" json:"current_level,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TankSpec carries the attributes of a tank about to be created.
type TankSpec struct {
	Name         string
	SerialNumber string
	Capacity     float64
	Height       float64
	Diameter     *float64
	Location     *string
}

// NewTank builds a transient, active tank.
func NewTank(spec TankSpec) *Tank {
	now := clock.Now()
	return &Tank{
		ID:           UnassignedID,
		Name:         spec.Name,
		SerialNumber: spec.SerialNumber,
		Capacity:     spec.Capacity,
		Height:       spec.Height,
		Diameter:     spec.Diameter,
		Location:     spec.Location,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPersisted reports whether storage has assigned an id.
func (t *Tank) IsPersisted() bool { return t.ID != UnassignedID }

func (t *Tank) Rename(name string) {
	t.Name = name
	t.touch()
}

func (t *Tank) SetSerialNumber(serial string) {
	t.SerialNumber = serial
	t.touch()
}

func (t *Tank) SetCapacity(liters float64) {
	t.Capacity = liters
	t.touch()
}

func (t *Tank) SetHeight(cm float64) {
	t.Height = cm
	t.touch()
}

// SetDiameter replaces the diameter. nil switches the tank to the proportional formula.
func (t *Tank) SetDiameter(cm *float64) {
	t.Diameter = cm
	t.touch()
}

func (t *Tank) SetLocation(location *string) {
	t.Location = location
	t.touch()
}

func (t *Tank) Activate() {
	t.Active = true
	t.touch()
}

func (t *Tank) Deactivate() {
	t.Active = false
	t.touch()
}

// RecordLevel stores an explicitly reported current level on the tank.
// Registering a reading never calls this.
func (t *Tank) RecordLevel(cm float64) {
	t.CurrentLevel = &cm
	t.touch()
}

func (t *Tank) touch() { t.UpdatedAt = clock.Now() }
