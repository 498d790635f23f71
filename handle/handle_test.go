package handle_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"bdi.dev/engine/handle"
)

func TestNewIsValidAndUnique(t *testing.T) {
	a := handle.New("goal1")
	b := handle.New("goal1")
	require.True(t, a.Valid())
	require.True(t, b.Valid())
	require.False(t, a.Equal(b))
}

func TestZeroValueIsInvalid(t *testing.T) {
	var h handle.Handle
	require.False(t, h.Valid())
}

func TestEqualityByIDOnly(t *testing.T) {
	id := uuid.New()
	a := handle.WithID("alice", id)
	b := handle.WithID("bob", id)
	require.True(t, a.Equal(b))
	require.NotEqual(t, a.Name, b.Name)
}
