package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 10, 0, 0, time.UTC)
	run := domain.RunInfo{ID: "run-42", StartedAt: now}
	cols := []string{"LST_Celsius", "NDVI_Value", "LandCover_Type"}
	row := domain.MatchedRow{
		NormalizedSample: domain.NormalizedSample{
			Date:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Lon:   30.000000000000004,
			Lat:   -40.01,
			Value: domain.Number(21.5),
		},
		Overlays: []domain.Value{domain.Missing(), domain.Category("Forest")},
	}

	msg, err := serializeToMessage(run, now, cols, row, 2)
	require.NoError(t, err)

	assert.Equal(t, []byte("2024-01-10|30.00|-40.01"), msg.Key)
	assert.JSONEq(t, `{
		"run_id": "run-42",
		"date": "2024-01-10",
		"longitude": 30,
		"latitude": -40.01,
		"values": {"LST_Celsius": 21.5, "NDVI_Value": null, "LandCover_Type": "Forest"}
	}`, string(msg.Value))

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-42"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestLinkedRecord_Decode(t *testing.T) {
	var rec LinkedRecord
	require.NoError(t, json.Unmarshal([]byte(`{"run_id":"r","date":"2024-02-01","longitude":1.5,"latitude":2,"values":{"a":0.25,"b":null}}`), &rec))
	assert.Equal(t, domain.Number(0.25), rec.Values["a"])
	assert.True(t, rec.Values["b"].IsMissing())
}
