package auction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/auction"
	"bdi.dev/engine/belief"
	"bdi.dev/engine/handle"
	"bdi.dev/engine/model"
	"bdi.dev/engine/schedule"
)

func TestAuctionFinishesOnFullBidCount(t *testing.T) {
	a := handle.New("member-a")
	b := handle.New("member-b")
	start := time.Unix(0, 0)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{a, b}, start.Add(10*time.Second))

	require.False(t, au.Finished(start))
	require.True(t, au.AddBid(start, a, 3, true))
	require.False(t, au.Finished(start))
	require.True(t, au.AddBid(start, b, 1, true))
	require.True(t, au.Finished(start))
}

func TestAuctionFinishesOnExpiry(t *testing.T) {
	a := handle.New("member-a")
	start := time.Unix(0, 0)
	expiry := start.Add(time.Second)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{a, handle.New("member-b")}, expiry)

	require.False(t, au.Finished(start))
	require.True(t, au.Finished(expiry))
	require.True(t, au.Finished(expiry.Add(time.Millisecond)))
}

func TestAddBidRejectsNonCandidateDuplicateAndLate(t *testing.T) {
	a := handle.New("member-a")
	b := handle.New("member-b")
	outsider := handle.New("outsider")
	start := time.Unix(0, 0)
	expiry := start.Add(time.Second)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{a, b}, expiry)

	require.False(t, au.AddBid(start, outsider, 1, true))
	require.True(t, au.AddBid(start, a, 1, true))
	require.False(t, au.AddBid(start, a, 2, true), "duplicate bid from same member must be rejected")
	require.False(t, au.AddBid(expiry, b, 1, true), "bid at/after expiry must be rejected")
}

func TestWinnerPicksLowestScoreAmongSuccessfulBids(t *testing.T) {
	a := handle.New("member-a")
	b := handle.New("member-b")
	c := handle.New("member-c")
	start := time.Unix(0, 0)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{a, b, c}, start.Add(time.Second))

	au.AddBid(start, a, 5, true)
	au.AddBid(start, b, 2, false) // FAILed bid, must not win even though cheapest
	au.AddBid(start, c, 2, true)

	winner, ok := au.Winner()
	require.True(t, ok)
	require.Equal(t, c, winner.Member)
}

func TestWinnerTieBreaksByMemberHandleLexicalOrder(t *testing.T) {
	higher := handle.New("zzz")
	lower := handle.New("aaa")
	start := time.Unix(0, 0)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{higher, lower}, start.Add(time.Second))

	au.AddBid(start, higher, 1, true)
	au.AddBid(start, lower, 1, true)

	winner, ok := au.Winner()
	require.True(t, ok)
	require.Equal(t, lower, winner.Member)
}

func TestWinnerNoneWhenAllBidsFail(t *testing.T) {
	a := handle.New("member-a")
	start := time.Unix(0, 0)
	au := auction.New(handle.New("sched-1"), "Goal", []handle.Handle{a}, start.Add(time.Second))
	au.AddBid(start, a, 1, false)

	_, ok := au.Winner()
	require.False(t, ok)
}

func TestBacklogEntryScoresSandboxCost(t *testing.T) {
	bctx := belief.New()
	goal := &model.Goal{Handle: handle.New("Goal"), Name: "Goal"}
	plan := &model.Plan{Handle: handle.New("P"), Name: "P", Goal: "Goal",
		Cost: func(*model.Projection, model.Bindings) float64 { return 7 }}

	deps := schedule.Deps{
		PlansFor:  func(string) []*model.Plan { return []*model.Plan{plan} },
		TacticFor: func(string) *model.Tactic { return nil },
	}

	entry := auction.NewBacklogEntry(handle.New("sched-1"), handle.New("initiator"), goal, nil, nil, bctx, deps)
	cost, ok := entry.Score(schedule.MaxIterations)
	require.True(t, ok)
	require.Equal(t, 7.0, cost)
}
