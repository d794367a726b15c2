package order

// Status is an order lifecycle state. The codes are the wire values shared
// with the mobile and web clients and are stored as-is.
type Status string

const (
	// StatusPending is the initial state of every created order.
	StatusPending Status = "PENDIENTE"
	// StatusApproved means the order passed review and the warehouse may
	// start picking.
	StatusApproved Status = "APROBADO"
	// StatusPrepared means the warehouse finished picking the order.
	StatusPrepared Status = "PREPARADO"
	// StatusInRoute means the order left the branch for delivery.
	StatusInRoute Status = "EN_RUTA"
	// StatusDelivered is the successful terminal state.
	StatusDelivered Status = "ENTREGADO"
	// StatusVoided is the terminal state of a cancelled order.
	StatusVoided Status = "ANULADO"
	// StatusRejected is the terminal state of a rejected order.
	StatusRejected Status = "RECHAZADO"
)

// allStatuses is the closed set of legal status codes.
var allStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusPrepared:  {},
	StatusInRoute:   {},
	StatusDelivered: {},
	StatusVoided:    {},
	StatusRejected:  {},
}

// cancellableFrom is the set of states CancelOrder accepts.
var cancellableFrom = []Status{StatusPending, StatusApproved}

// Valid reports whether s is one of the closed set of status codes.
func (s Status) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusVoided || s == StatusRejected
}

// CanTransition validates the from→to edge against the transition graph.
// EN_RUTA is only reachable from PREPARADO; every other edge out of a
// non-terminal state is permitted by this layer. Stricter policy, if any,
// belongs to callers.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return &IllegalTransitionError{From: from, To: to}
	}
	if from.Terminal() {
		return &IllegalTransitionError{From: from, To: to}
	}
	if to == StatusInRoute && from != StatusPrepared {
		return &IllegalTransitionError{From: from, To: to}
	}
	return nil
}
