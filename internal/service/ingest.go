package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

// SensorMessage is the JSON document sensors publish over MQTT.
type SensorMessage struct {
	TankID           int64           `json:"tank_id"`
	LiquidLevel      *float64        `json:"liquid_level"`
	Temperature      *float64        `json:"temperature,omitempty"`
	ReadingTimestamp *time.Time      `json:"reading_timestamp,omitempty"`
	RawData          json.RawMessage `json:"raw_data,omitempty"`
}

// Ingest registers readings on behalf of transports and then notifies the
// observers. Observer failures are logged and never undo the registration.
type Ingest struct {
	readings  *ReadingService
	observers []ReadingObserver
	log       zerolog.Logger
	metrics   *observability.Metrics
}

func (i *Ingest) Register(ctx context.Context, in RegisterReadingInput) (*domain.TankReading, error) {
	reading, tank, err := i.readings.register(ctx, in)
	if err != nil {
		return nil, err
	}
	i.notify(ctx, tank, reading)
	return reading, nil
}

// BatchFailure records why one batch item was not registered.
type BatchFailure struct {
	Index int
	Err   error
}

type BatchResult struct {
	Registered []domain.TankReading
	Failures   []BatchFailure
}

// RegisterBatch registers and announces every item independently. A failing
// item never stops the rest.
func (i *Ingest) RegisterBatch(ctx context.Context, items []RegisterReadingInput) BatchResult {
	res := BatchResult{Registered: []domain.TankReading{}}
	for idx, in := range items {
		r, err := i.Register(ctx, in)
		if err != nil {
			res.Failures = append(res.Failures, BatchFailure{Index: idx, Err: err})
			continue
		}
		res.Registered = append(res.Registered, *r)
	}
	return res
}

// FromMQTT decodes a sensor message and registers it.
func (i *Ingest) FromMQTT(ctx context.Context, topic string, payload []byte) (*domain.TankReading, error) {
	var msg SensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %v", domain.ErrInvalidInput, topic, err)
	}
	if msg.TankID <= 0 || msg.LiquidLevel == nil {
		return nil, fmt.Errorf("%w: %s payload needs tank_id and liquid_level", domain.ErrInvalidInput, topic)
	}
	if len(msg.RawData) > 0 && string(msg.RawData) == "null" {
		msg.RawData = nil
	}
	return i.Register(ctx, RegisterReadingInput{
		TankID:      msg.TankID,
		LiquidLevel: *msg.LiquidLevel,
		Timestamp:   msg.ReadingTimestamp,
		Temperature: msg.Temperature,
		RawData:     msg.RawData,
	})
}

func (i *Ingest) notify(ctx context.Context, tank *domain.Tank, reading *domain.TankReading) {
	for _, obs := range i.observers {
		if err := obs.ReadingRegistered(ctx, tank, reading); err != nil {
			i.metrics.ObserverFailed(obs.Name())
			i.log.Error().Err(err).
				Str("observer", obs.Name()).
				Int64("tank_id", reading.TankID).
				Int64("reading_id", reading.ID).
				Msg("reading notification failed")
		}
	}
}
