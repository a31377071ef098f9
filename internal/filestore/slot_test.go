package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlot_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	slot, err := NewSlot(dir)
	require.NoError(t, err)

	_, ok, err := slot.Get(ctx, "ecc_store_v1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, slot.Set(ctx, "ecc_store_v1", `{"version":1}`))
	require.NoError(t, slot.Set(ctx, "ecc_store_v1", `{"version":2}`))

	value, ok, err := slot.Get(ctx, "ecc_store_v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"version":2}`, value)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")
	require.Equal(t, "ecc_store_v1.json", entries[0].Name())

	require.NoError(t, slot.Delete(ctx, "ecc_store_v1"))
	require.NoError(t, slot.Delete(ctx, "ecc_store_v1"))
	_, ok, err = slot.Get(ctx, "ecc_store_v1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSlot_RejectsPathKeys(t *testing.T) {
	slot, err := NewSlot(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		require.Error(t, slot.Set(context.Background(), key, "x"), "key %q", key)
	}
}

func TestSlot_SetFailsWhenDirectoryIsGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	slot, err := NewSlot(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	require.Error(t, slot.Set(context.Background(), "k", "v"))
}

func TestNewSlot_RequiresDir(t *testing.T) {
	_, err := NewSlot(" ")
	require.Error(t, err)
}
