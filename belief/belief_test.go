package belief_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/belief"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/message"
	"bdi.dev/engine/model"
)

func TestAddMessageAndLookup(t *testing.T) {
	ctx := belief.New()
	msg := message.NewRecordFromMap("battery.v1", map[string]any{"level": 80})
	ctx.AddMessage(time.Now(), msg)

	got, ok := ctx.Message("battery.v1")
	require.True(t, ok)
	require.Equal(t, "battery.v1", got.SchemaName())
}

func TestResourceBoundsEnforced(t *testing.T) {
	ctx := belief.New()
	ctx.DefineResource(&model.ResourceDef{Name: "fuel", Min: 0, Max: 10})

	require.True(t, ctx.ApplyResourceDelta("fuel", 5))
	snap, ok := ctx.Resource("fuel")
	require.True(t, ok)
	require.Equal(t, 5, snap.Current)

	require.False(t, ctx.ApplyResourceDelta("fuel", 100))
	snap, _ = ctx.Resource("fuel")
	require.Equal(t, 5, snap.Current)
}

func TestResourceLocking(t *testing.T) {
	ctx := belief.New()
	ctx.DefineResource(&model.ResourceDef{Name: "arm", Min: 0, Max: 1})
	require.False(t, ctx.ResourceLocked("arm"))
	ctx.LockResource("arm")
	require.True(t, ctx.ResourceLocked("arm"))
	ctx.UnlockResource("arm")
	require.False(t, ctx.ResourceLocked("arm"))
}

func TestUpsertSharedReportsChange(t *testing.T) {
	ctx := belief.New()
	owner := handle.New("member-a")
	msg := message.NewRecordFromMap("position.v1", map[string]any{"x": 1})

	require.True(t, ctx.UpsertShared("position.v1", owner, msg, 100))
	require.False(t, ctx.UpsertShared("position.v1", owner, msg, 100))
	require.True(t, ctx.UpsertShared("position.v1", owner, msg, 200))

	entries := ctx.SharedEntries("position.v1")
	require.Len(t, entries, 1)
	require.Equal(t, int64(200), entries[owner].UpdatedAt)
}

func TestShouldShareThresholdAndIdleFlush(t *testing.T) {
	ctx := belief.New()
	start := time.Unix(1000, 0)

	require.False(t, ctx.ShouldShare(start, false))

	ctx.AddMessage(start, message.NewRecordFromMap("x.v1", map[string]any{}))
	require.True(t, ctx.ShouldShare(start, false))
	ctx.MarkShared(start)

	soon := start.Add(100 * time.Millisecond)
	ctx.AddMessage(soon, message.NewRecordFromMap("x.v1", map[string]any{"a": 1}))
	require.False(t, ctx.ShouldShare(soon, false))
	require.True(t, ctx.ShouldShare(soon, true))

	later := start.Add(600 * time.Millisecond)
	ctx.AddMessage(later, message.NewRecordFromMap("x.v1", map[string]any{"a": 2}))
	require.True(t, ctx.ShouldShare(later, false))
}
