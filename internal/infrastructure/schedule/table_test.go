package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-spray/internal/domain/entity"
)

const lateBlight = `{
  "Tomato_Late_blight": {"disease": "Late Blight", "spray": true, "spray_time": 5, "servo_index": 2, "chemical": "Copper Fungicide"},
  "Tomato_healthy": {"disease": "Healthy", "spray": false, "spray_time": 0, "servo_index": null, "chemical": "None"}
}`

func TestParse_ResolveKnownLabel(t *testing.T) {
	table, err := Parse([]byte(lateBlight))
	require.NoError(t, err)

	rec := table.Resolve("Tomato_Late_blight")
	require.Equal(t, "Late Blight", rec.Disease)
	require.True(t, rec.Spray)
	require.Equal(t, 5, rec.SprayTime)
	require.Equal(t, 2, *rec.ServoIndex)
	require.Equal(t, "Copper Fungicide", rec.Chemical)

	healthy := table.Resolve("Tomato_healthy")
	require.False(t, healthy.Spray)
	require.Nil(t, healthy.ServoIndex)
}

func TestParse_UnknownLabel(t *testing.T) {
	table, err := Parse([]byte(lateBlight))
	require.NoError(t, err)

	require.Equal(t, entity.UnknownRecommendation(), table.Resolve("Foobar"))
	require.Equal(t, entity.UnknownRecommendation(), table.Resolve(""))
}

func TestParse_ResolveDoesNotLeakState(t *testing.T) {
	table, err := Parse([]byte(lateBlight))
	require.NoError(t, err)

	rec := table.Resolve("Tomato_Late_blight")
	*rec.ServoIndex = 9
	require.Equal(t, 2, *table.Resolve("Tomato_Late_blight").ServoIndex)
}

func TestParse_Defaults(t *testing.T) {
	table, err := Parse([]byte(`{"Tomato_Leaf_Mold": {"spray": true, "spray_time": 3}}`))
	require.NoError(t, err)

	rec := table.Resolve("Tomato_Leaf_Mold")
	require.Equal(t, "Tomato_Leaf_Mold", rec.Disease)
	require.Equal(t, "None", rec.Chemical)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"a":`},
		{"empty", `{}`},
		{"negative spray time", `{"a": {"disease": "A", "spray_time": -1}}`},
		{"negative servo", `{"a": {"disease": "A", "servo_index": -2}}`},
		{"unknown field", `{"a": {"disease": "A", "volume": 3}}`},
		{"not an object", `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoad_ShippedSchedule(t *testing.T) {
	table, err := Load(filepath.Join("..", "..", "..", "data", "spray_schedule.json"))
	require.NoError(t, err)
	require.Len(t, table.Labels(), 6)

	rec := table.Resolve("Tomato_Late_blight")
	require.True(t, rec.Spray)
	require.Equal(t, 5, rec.SprayTime)
	require.Equal(t, 2, *rec.ServoIndex)
	require.Equal(t, "Copper Fungicide", rec.Chemical)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	require.NoError(t, os.WriteFile(path, []byte(lateBlight), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Tomato_Late_blight", "Tomato_healthy"}, table.Labels())
}
