package promise_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/promise"
)

func TestResolveBeforeThenInvokesImmediately(t *testing.T) {
	p := promise.New()
	p.Resolve(promise.Result{Status: promise.StatusSuccess})

	var gotSuccess bool
	p.Then(func(promise.Result) { gotSuccess = true }, func(promise.Result) { t.Fatal("onFail called") })
	require.True(t, gotSuccess)
}

func TestThenBeforeResolveInvokesOnFire(t *testing.T) {
	p := promise.New()
	var got promise.Result
	p.Then(func(r promise.Result) { got = r }, func(promise.Result) { t.Fatal("onFail called") })

	p.Resolve(promise.Result{Status: promise.StatusSuccess, Reason: "done"})
	require.Equal(t, promise.StatusSuccess, got.Status)
	require.Equal(t, "done", got.Reason)
}

func TestSingleFireIgnoresSubsequentResolves(t *testing.T) {
	p := promise.New()
	calls := 0
	p.Then(func(promise.Result) { calls++ }, func(promise.Result) { calls++ })

	p.Resolve(promise.Result{Status: promise.StatusSuccess})
	p.Resolve(promise.Result{Status: promise.StatusFail, Err: errors.New("too late")})

	require.Equal(t, 1, calls)
	require.True(t, p.Fired())
}

func TestFailAndDroppedRouteToOnFail(t *testing.T) {
	p := promise.New()
	var gotFail promise.Result
	p.Then(func(promise.Result) { t.Fatal("onSuccess called") }, func(r promise.Result) { gotFail = r })
	p.Resolve(promise.Result{Status: promise.StatusDropped})
	require.Equal(t, promise.StatusDropped, gotFail.Status)
}

func TestWaitBlocksUntilResolve(t *testing.T) {
	p := promise.New()
	done := make(chan promise.Result, 1)
	go func() { done <- p.Wait() }()

	p.Resolve(promise.Result{Status: promise.StatusSuccess})
	r := <-done
	require.Equal(t, promise.StatusSuccess, r.Status)
}
