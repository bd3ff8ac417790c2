package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

// memoryStore keeps tanks and readings together so deleting a tank can drop its readings.
type memoryStore struct {
	mu          sync.RWMutex
	tanks       map[int64]domain.Tank
	readings    map[int64]domain.TankReading
	nextTank    int64
	nextReading int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tanks:    make(map[int64]domain.Tank),
		readings: make(map[int64]domain.TankReading),
	}
}

// MemoryTanks implements domain.TankRepository in process memory.
type MemoryTanks struct {
	store *memoryStore
}

func (m *MemoryTanks) FindByID(_ context.Context, id int64) (*domain.Tank, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	t, ok := m.store.tanks[id]
	if !ok {
		return nil, nil
	}
	return cloneTank(t), nil
}

func (m *MemoryTanks) FindBySerialNumber(_ context.Context, serial string) (*domain.Tank, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for _, t := range m.store.tanks {
		if t.SerialNumber == serial {
			return cloneTank(t), nil
		}
	}
	return nil, nil
}

func (m *MemoryTanks) FindAll(_ context.Context) ([]domain.Tank, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]domain.Tank, 0, len(m.store.tanks))
	for _, t := range m.store.tanks {
		out = append(out, *cloneTank(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryTanks) Save(_ context.Context, tank *domain.Tank) (*domain.Tank, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	saved := *cloneTank(*tank)
	_, exists := m.store.tanks[saved.ID]
	for id, other := range m.store.tanks {
		if id != saved.ID && other.SerialNumber == saved.SerialNumber {
			return nil, domain.ErrDuplicateSerial
		}
	}
	if !exists || !saved.IsPersisted() {
		m.store.nextTank++
		saved.ID = m.store.nextTank
	}
	m.store.tanks[saved.ID] = saved
	return cloneTank(saved), nil
}

func (m *MemoryTanks) Delete(_ context.Context, id int64) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.tanks[id]; !ok {
		return false, nil
	}
	delete(m.store.tanks, id)
	for rid, r := range m.store.readings {
		if r.TankID == id {
			delete(m.store.readings, rid)
		}
	}
	return true, nil
}

// MemoryReadings implements domain.ReadingRepository in process memory.
type MemoryReadings struct {
	store *memoryStore
}

func (m *MemoryReadings) FindByID(_ context.Context, id int64) (*domain.TankReading, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	r, ok := m.store.readings[id]
	if !ok {
		return nil, nil
	}
	return cloneReading(r), nil
}

func (m *MemoryReadings) Save(_ context.Context, reading *domain.TankReading) (*domain.TankReading, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.tanks[reading.TankID]; !ok {
		return nil, domain.ErrTankNotFound
	}
	saved := *cloneReading(*reading)
	if _, ok := m.store.readings[saved.ID]; !ok || !saved.IsPersisted() {
		m.store.nextReading++
		saved.ID = m.store.nextReading
	}
	m.store.readings[saved.ID] = saved
	return cloneReading(saved), nil
}

func (m *MemoryReadings) FindByTankID(_ context.Context, tankID int64) ([]domain.TankReading, error) {
	return m.filter(tankID, func(domain.TankReading) bool { return true }), nil
}

func (m *MemoryReadings) FindByTankIDAndDateRange(_ context.Context, tankID int64, start, end time.Time) ([]domain.TankReading, error) {
	return m.filter(tankID, func(r domain.TankReading) bool {
		return !r.ReadingTimestamp.Before(start) && !r.ReadingTimestamp.After(end)
	}), nil
}

func (m *MemoryReadings) FindLatestByTankID(_ context.Context, tankID int64) (*domain.TankReading, error) {
	all := m.filter(tankID, func(domain.TankReading) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

func (m *MemoryReadings) FindOlderThan(_ context.Context, tankID int64, olderThan time.Time) ([]domain.TankReading, error) {
	return m.filter(tankID, func(r domain.TankReading) bool {
		return r.ReadingTimestamp.Before(olderThan)
	}), nil
}

func (m *MemoryReadings) DeleteOldReadings(_ context.Context, tankID int64, olderThan time.Time) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var n int64
	for id, r := range m.store.readings {
		if r.TankID == tankID && r.ReadingTimestamp.Before(olderThan) {
			delete(m.store.readings, id)
			n++
		}
	}
	return n, nil
}

// filter returns matching readings of one tank, newest first.
func (m *MemoryReadings) filter(tankID int64, keep func(domain.TankReading) bool) []domain.TankReading {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := []domain.TankReading{}
	for _, r := range m.store.readings {
		if r.TankID == tankID && keep(r) {
			out = append(out, *cloneReading(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReadingTimestamp.Equal(out[j].ReadingTimestamp) {
			return out[i].ReadingTimestamp.After(out[j].ReadingTimestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func cloneTank(t domain.Tank) *domain.Tank {
	c := t
	if t.Diameter != nil {
		d := *t.Diameter
		c.Diameter = &d
	}
	if t.Location != nil {
		l := *t.Location
		c.Location = &l
	}
	if t.CurrentLevel != nil {
		lvl := *t.CurrentLevel
		c.CurrentLevel = &lvl
	}
	return &c
}

func cloneReading(r domain.TankReading) *domain.TankReading {
	c := r
	if r.Temperature != nil {
		temp := *r.Temperature
		c.Temperature = &temp
	}
	if r.RawData != nil {
		c.RawData = append(json.RawMessage(nil), r.RawData...)
	}
	return &c
}
