package message_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/message"
)

func TestRecordCloneIsIndependent(t *testing.T) {
	r := message.NewRecordFromMap("Ping", map[string]any{"count": float64(1)})
	clone := r.Clone()
	require.NoError(t, clone.Set("count", float64(2)))

	v, ok := r.Get("count")
	require.True(t, ok)
	require.Equal(t, float64(1), v)

	cv, ok := clone.Get("count")
	require.True(t, ok)
	require.Equal(t, float64(2), cv)
}

func TestRecordEqual(t *testing.T) {
	a := message.NewRecordFromMap("Ping", map[string]any{"count": float64(1)})
	b := message.NewRecordFromMap("Ping", map[string]any{"count": float64(1)})
	c := message.NewRecordFromMap("Ping", map[string]any{"count": float64(2)})
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestRecordJSONRoundTrip(t *testing.T) {
	r := message.NewRecordFromMap("Ping", map[string]any{"count": float64(3)})
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var out message.Record
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "Ping", out.SchemaName())
	v, ok := out.Get("count")
	require.True(t, ok)
	require.Equal(t, float64(3), v)
}

func TestSchemaVerifyRequiredFields(t *testing.T) {
	schema, err := message.Compile("Ping", map[string]any{
		"type":     "object",
		"required": []string{"count"},
		"properties": map[string]any{
			"count": map[string]any{"type": "number"},
		},
	})
	require.NoError(t, err)

	ok := message.NewRecordFromMap("Ping", map[string]any{"count": float64(1)})
	require.NoError(t, schema.Verify(ok))

	missing := message.NewRecordFromMap("Ping", map[string]any{})
	require.Error(t, schema.Verify(missing))

	wrongSchema := message.NewRecordFromMap("Pong", map[string]any{"count": float64(1)})
	require.Error(t, schema.Verify(wrongSchema))
}

func TestRegistryDeclareUniqueness(t *testing.T) {
	reg := message.NewRegistry()
	require.NoError(t, reg.Declare("Ping"))
	require.Error(t, reg.Declare("Ping"))
	require.True(t, reg.Known("Ping"))
	require.False(t, reg.Known("Pong"))
}
