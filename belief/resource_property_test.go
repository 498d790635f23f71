package belief_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"bdi.dev/engine/belief"
	"bdi.dev/engine/model"
)

// TestResourceStaysInBoundsUnderAnyDeltaSequence verifies spec §3's
// resource invariant: `min <= current <= max` must hold no matter what
// sequence of deltas is applied, because ApplyResourceDelta rejects any
// delta that would push current out of range rather than clamping it.
func TestResourceStaysInBoundsUnderAnyDeltaSequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("current stays within [min, max] for any delta sequence", prop.ForAll(
		func(min, span int, deltas []int) bool {
			max := min + span

			ctx := belief.New()
			ctx.DefineResource(&model.ResourceDef{Name: "r", Min: min, Max: max})

			for _, d := range deltas {
				ctx.ApplyResourceDelta("r", d)

				snap, ok := ctx.Resource("r")
				if !ok {
					return false
				}
				if snap.Current < min || snap.Current > max {
					return false
				}
				if snap.LockCount < 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(0, 2000),
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.TestingRun(t)
}

// TestResourceLockUnlockNeverGoesNegative verifies the §5 "resource lock
// count" invariant: an unlock without a matching prior lock never drives
// the count below zero (a violation the spec treats as a fatal
// programmer bug, not something ApplyResourceDelta/unlock should panic
// on mid-search).
func TestResourceLockUnlockNeverGoesNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("lock count never negative for any lock/unlock interleaving", prop.ForAll(
		func(ops []bool) bool {
			ctx := belief.New()
			ctx.DefineResource(&model.ResourceDef{Name: "arm", Min: 0, Max: 1})

			for _, lock := range ops {
				if lock {
					ctx.LockResource("arm")
				} else {
					ctx.UnlockResource("arm")
				}
				snap, ok := ctx.Resource("arm")
				if !ok || snap.LockCount < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
