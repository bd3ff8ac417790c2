package repository

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"other", errors.New("connection reset"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate("op", tt.err)
			assert.ErrorContains(t, got, "op: ")
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.ErrorIs(t, got, tt.err)
			assert.NotErrorIs(t, got, domain.ErrConflict)
		})
	}
}

func TestRawDataArg(t *testing.T) {
	assert.Nil(t, rawDataArg(nil))
	assert.Nil(t, rawDataArg(json.RawMessage{}))
	assert.Equal(t, `{"a": 1}`, rawDataArg(json.RawMessage(`{"a": 1}`)))
}

func TestReadingRow_ToDomain(t *testing.T) {
	row := readingRow{ID: 3, TankID: 1, Volume: 12, ReadingTimestamp: time.Unix(10, 0), RawData: []byte(`{"x":true}`)}
	r := row.toDomain()
	assert.Equal(t, int64(3), r.ID)
	assert.Equal(t, `{"x":true}`, string(r.RawData))

	row.RawData = nil
	assert.Nil(t, row.toDomain().RawData)
}
