package event

import "bdi.dev/engine/handle"

// Envelope carries the fields every event shares. It is embedded
// anonymously in each concrete event struct.
type Envelope struct {
	eventType     Type
	id            handle.Handle
	caller        handle.Handle
	recipient     handle.Handle
	reason        string
	broadcastToBus bool
}

// newEnvelope builds an Envelope, generating a fresh event id.
func newEnvelope(t Type, caller handle.Handle) Envelope {
	return Envelope{eventType: t, id: handle.New(t.String()), caller: caller}
}

// Type returns the event's taxonomy tag.
func (e Envelope) Type() Type { return e.eventType }

// ID returns this event's unique handle.
func (e Envelope) ID() handle.Handle { return e.id }

// Caller returns the handle of the agent that raised this event, if any.
func (e Envelope) Caller() handle.Handle { return e.caller }

// Recipient returns the intended target agent's handle, if set. A zero
// handle means "handle locally".
func (e Envelope) Recipient() handle.Handle { return e.recipient }

// Reason returns the optional human-readable reason attached to the event.
func (e Envelope) Reason() string { return e.reason }

// BroadcastToBus reports whether the event should unconditionally mirror
// to the bus adapter regardless of the per-type mirroring rule.
func (e Envelope) BroadcastToBus() bool { return e.broadcastToBus }

// WithRecipient returns a copy of e addressed to recipient (used by the
// dispatcher's routing rule to rewrite caller/recipient before forwarding
// to the engine router).
func (e Envelope) WithRecipient(recipient handle.Handle) Envelope {
	e.recipient = recipient
	return e
}

// WithCaller returns a copy of e with caller rewritten to self, as the
// routing rule requires before forwarding.
func (e Envelope) WithCaller(caller handle.Handle) Envelope {
	e.caller = caller
	return e
}

// WithReason returns a copy of e carrying reason.
func (e Envelope) WithReason(reason string) Envelope {
	e.reason = reason
	return e
}

// WithBroadcast returns a copy of e with the bus-mirroring flag set.
func (e Envelope) WithBroadcast(b bool) Envelope {
	e.broadcastToBus = b
	return e
}

// Event is the interface every concrete event type satisfies.
// The dispatcher type-switches on this to run the per-type contract.
type Event interface {
	Type() Type
	ID() handle.Handle
	Caller() handle.Handle
	Recipient() handle.Handle
	Reason() string
	BroadcastToBus() bool
}

// Routed reports whether e must be forwarded to the engine router rather
// than handled locally.
func Routed(e Event, self handle.Handle) bool {
	return e.Recipient().Valid() && !e.Recipient().Equal(self)
}

// MirrorsToBus reports whether e's type unconditionally mirrors to the
// bus adapter when present, per the always-mirrored type list. ACTION is handled separately by callers because its
// mirroring depends on whether it was handled locally.
func MirrorsToBus(t Type) bool {
	switch t {
	case Message, Percept, Pursue, Drop, ShareBeliefSet:
		return true
	default:
		return false
	}
}
