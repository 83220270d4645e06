package datastores

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSlot checks the [Slot] contract shared by every backend.
func testSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Get(ctx, "contacts")
	require.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Set(ctx, "contacts", []byte(`[{"id":"1"}]`)))
	require.NoError(t, slot.Set(ctx, "other", []byte(`x`)))
	got, err := slot.Get(ctx, "contacts")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, slot.Set(ctx, "contacts", []byte(`[]`)))
	got, err = slot.Get(ctx, "contacts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got, err = slot.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, `x`, string(got))
}

func TestSlotInmem(t *testing.T) {
	testSlot(t, new(SlotInmem))
}

func TestSlotFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "slots")
	testSlot(t, &SlotFile{Dir: dir})

	matches, err := filepath.Glob(filepath.Join(dir, ".slot-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files are cleaned up")
}

func TestSlotSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "contacts.db")
	slot, err := OpenSlotSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	require.NoError(t, slot.Ping(ctx))
	testSlot(t, slot)

	t.Run("survives reopening", func(t *testing.T) {
		require.NoError(t, slot.Close())
		reopened, err := OpenSlotSQLite(ctx, path)
		require.NoError(t, err)
		defer reopened.Close()

		got, err := reopened.Get(ctx, "contacts")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("requires a path", func(t *testing.T) {
		_, err := OpenSlotSQLite(ctx, " ")
		require.Error(t, err)
	})
}
