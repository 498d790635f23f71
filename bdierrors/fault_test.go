package bdierrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/bdierrors"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	f := bdierrors.Wrap(bdierrors.KindExecutorFault, "action panicked", cause)
	require.ErrorIs(t, f, cause)
	require.Equal(t, "action panicked: boom", f.Error())
}

func TestKindOf(t *testing.T) {
	f := bdierrors.New(bdierrors.KindValidation, "unknown goal")
	kind, ok := bdierrors.KindOf(f)
	require.True(t, ok)
	require.Equal(t, bdierrors.KindValidation, kind)

	_, ok = bdierrors.KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := bdierrors.New(bdierrors.KindResourceViolation, "first message")
	b := bdierrors.New(bdierrors.KindResourceViolation, "second message")
	require.True(t, errors.Is(a, b))

	c := bdierrors.New(bdierrors.KindValidation, "first message")
	require.False(t, errors.Is(a, c))
}
