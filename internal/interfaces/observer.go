// Package interfaces holds the small cross-cutting interfaces shared
// between the simulation's internal packages, so belt/dock/truckfsm/session
// don't need to import each other just to report events.
package interfaces

// Event identifies what happened, for an Observer's single dispatch point.
type Event uint8

const (
	EventPackageCreated Event = iota
	EventPackageLoaded
	EventPackageDeadLettered
	EventTruckArrived
	EventTruckDocked
	EventTruckDeparted
	EventSessionLogin
	EventSessionLogout
	EventExpressDelivery
	EventDepartureSignaled
)

// Observer receives belt/dock/truck/session lifecycle notifications. It is
// the seam belt-monitor and audit logging hang off of, instead of those
// concerns being wired directly into the simulation core.
type Observer interface {
	Notify(evt Event, fields map[string]any)
}

// NoOpObserver discards every event; it's the zero-value default so callers
// never need a nil check before calling Notify.
type NoOpObserver struct{}

func (NoOpObserver) Notify(Event, map[string]any) {}

// MultiObserver fans a single Notify call out to every child observer, in
// registration order.
type MultiObserver []Observer

func (m MultiObserver) Notify(evt Event, fields map[string]any) {
	for _, o := range m {
		o.Notify(evt, fields)
	}
}
