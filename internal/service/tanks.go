package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

type CreateTankInput struct {
	Name         string
	SerialNumber string
	Capacity     float64
	Height       float64
	Diameter     *float64
	Location     *string
}

// UpdateTankInput applies only the non-nil fields. ClearDiameter and
// ClearLocation null the optional attributes explicitly.
type UpdateTankInput struct {
	Name          *string
	SerialNumber  *string
	Capacity      *float64
	Height        *float64
	Diameter      *float64
	ClearDiameter bool
	Location      *string
	ClearLocation bool
	Active        *bool
}

type TankService struct {
	tanks   domain.TankRepository
	log     zerolog.Logger
	metrics *observability.Metrics
}

func (s *TankService) Create(ctx context.Context, in CreateTankInput) (*domain.Tank, error) {
	existing, err := s.tanks.FindBySerialNumber(ctx, in.SerialNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSerial
	}

	tank, err := s.tanks.Save(ctx, domain.NewTank(domain.TankSpec(in)))
	if err != nil {
		return nil, err
	}
	s.metrics.TankCreated()
	s.log.Info().Int64("tank_id", tank.ID).Str("serial_number", tank.SerialNumber).Msg("tank created")
	return tank, nil
}

func (s *TankService) Update(ctx context.Context, id int64, in UpdateTankInput) (*domain.Tank, error) {
	tank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		tank.Rename(*in.Name)
	}
	if in.SerialNumber != nil {
		tank.SetSerialNumber(*in.SerialNumber)
	}
	if in.Capacity != nil {
		tank.SetCapacity(*in.Capacity)
	}
	if in.Height != nil {
		tank.SetHeight(*in.Height)
	}
	switch {
	case in.ClearDiameter:
		tank.SetDiameter(nil)
	case in.Diameter != nil:
		tank.SetDiameter(in.Diameter)
	}
	switch {
	case in.ClearLocation:
		tank.SetLocation(nil)
	case in.Location != nil:
		tank.SetLocation(in.Location)
	}
	if in.Active != nil {
		if *in.Active {
			tank.Activate()
		} else {
			tank.Deactivate()
		}
	}

	return s.tanks.Save(ctx, tank)
}

// UpdateLevel records an explicitly reported current level on the tank.
func (s *TankService) UpdateLevel(ctx context.Context, id int64, level float64) (*domain.Tank, error) {
	tank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tank.RecordLevel(level)
	return s.tanks.Save(ctx, tank)
}

func (s *TankService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	deleted, err := s.tanks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrTankNotFound
	}
	s.log.Info().Int64("tank_id", id).Msg("tank deleted")
	return nil
}

func (s *TankService) Get(ctx context.Context, id int64) (*domain.Tank, error) {
	tank, err := s.tanks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tank == nil {
		return nil, domain.ErrTankNotFound
	}
	return tank, nil
}

// List never returns nil.
func (s *TankService) List(ctx context.Context) ([]domain.Tank, error) {
	tanks, err := s.tanks.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if tanks == nil {
		tanks = []domain.Tank{}
	}
	return tanks, nil
}
