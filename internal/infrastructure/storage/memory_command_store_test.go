package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-spray/internal/domain/entity"
)

func TestMemoryCommandStore_StartsInert(t *testing.T) {
	store := NewMemoryCommandStore()
	require.True(t, store.Read().Equal(entity.DefaultCommand()))
}

func TestMemoryCommandStore_LastWriteWins(t *testing.T) {
	store := NewMemoryCommandStore()

	store.Write(entity.Command{Spray: true, SprayTime: 5, ServoIndex: entity.IntPtr(2), Chemical: entity.StringPtr("Copper Fungicide")})
	store.Write(entity.Command{Spray: true, SprayTime: 7, ServoIndex: entity.IntPtr(1), Chemical: entity.StringPtr("Neem Oil")})

	got := store.Read()
	require.Equal(t, 7, got.SprayTime)
	require.Equal(t, 1, *got.ServoIndex)
	require.Equal(t, "Neem Oil", got.ChemicalName())
}

func TestMemoryCommandStore_ReadReturnsCopy(t *testing.T) {
	store := NewMemoryCommandStore()
	cmd := entity.Command{Spray: true, SprayTime: 5, ServoIndex: entity.IntPtr(2)}
	store.Write(cmd)

	*cmd.ServoIndex = 9
	got := store.Read()
	require.Equal(t, 2, *got.ServoIndex)

	*got.ServoIndex = 4
	require.Equal(t, 2, *store.Read().ServoIndex)
}

func TestMemoryCommandStore_ConcurrentWritesNeverMix(t *testing.T) {
	store := NewMemoryCommandStore()
	a := entity.Command{Spray: true, SprayTime: 5, ServoIndex: entity.IntPtr(2), Chemical: entity.StringPtr("A")}
	b := entity.Command{Spray: false, SprayTime: 0, ServoIndex: nil, Chemical: entity.StringPtr("B")}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); store.Write(a) }()
		go func() { defer wg.Done(); store.Write(b) }()
		go func() {
			defer wg.Done()
			got := store.Read()
			require.True(t, got.Equal(a) || got.Equal(b) || got.Equal(entity.DefaultCommand()))
		}()
	}
	wg.Wait()

	got := store.Read()
	require.True(t, got.Equal(a) || got.Equal(b))
}
