package domain

// EventKind names the operationally significant moments in an order's life.
type EventKind string

const (
	EventNewOrder   EventKind = "new_order"
	EventOrderReady EventKind = "order_ready"
)

// Event is emitted when a snapshot diff finds a transition worth announcing.
// The set of implementations is closed: NewOrder and OrderReady.
type Event interface {
	Kind() EventKind
	Subject() Order
	sealed()
}

// NewOrder fires the first time an order is seen while still pending.
type NewOrder struct {
	Order Order
}

func (NewOrder) Kind() EventKind  { return EventNewOrder }
func (e NewOrder) Subject() Order { return e.Order }
func (NewOrder) sealed()          {}

// OrderReady fires when an already-seen order moves into ready.
type OrderReady struct {
	Order Order
}

func (OrderReady) Kind() EventKind  { return EventOrderReady }
func (e OrderReady) Subject() Order { return e.Order }
func (OrderReady) sealed()          {}
