package domain

// Snapshot is a point-in-time view of every order visible to a subscriber.
// It is immutable once built; callers receive copies of the underlying slice.
type Snapshot struct {
	orders []Order
}

// NewSnapshot copies orders into a new Snapshot, keeping their order.
func NewSnapshot(orders []Order) Snapshot {
	copied := make([]Order, len(orders))
	copy(copied, orders)
	return Snapshot{orders: copied}
}

// Orders returns a copy of the orders in snapshot order.
func (s Snapshot) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Len returns the number of orders.
func (s Snapshot) Len() int {
	return len(s.orders)
}

// Find looks an order up by id.
func (s Snapshot) Find(id string) (Order, bool) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Each calls fn for every order in snapshot order.
func (s Snapshot) Each(fn func(Order)) {
	for _, o := range s.orders {
		fn(o)
	}
}
