package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smart-spray/internal/domain/entity"
)

func TestFillEntry_KeepsGivenFields(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	in := sampleEntry("Late Blight")
	in.ID = "fixed"
	in.Timestamp = at

	out := fillEntry(in, time.Now)
	require.Equal(t, "fixed", out.ID)
	require.True(t, out.Timestamp.Equal(at))
	require.Equal(t, time.UTC, out.Timestamp.Location())

	*out.ServoIndex = 7
	require.Equal(t, 2, *in.ServoIndex)
}

func TestFillEntry_FillsMissing(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	out := fillEntry(entity.LogEntry{ClassID: "manual"}, func() time.Time { return now })
	require.NotEmpty(t, out.ID)
	require.Equal(t, now, out.Timestamp)
}

func TestTail(t *testing.T) {
	entries := []entity.LogEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	require.Len(t, tail(entries, -1), 3)
	require.Empty(t, tail(entries, 0))
	require.Equal(t, "c", tail(entries, 1)[0].ID)
	require.Len(t, tail(entries, 10), 3)
}
