package ports

import "errors"

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrPermissionDenied is returned when the backend refuses access for the tenant.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSubscription is returned when a live stream fails after it was established.
	ErrSubscription = errors.New("subscription error")
	// ErrSetup is returned when a live stream cannot be established.
	ErrSetup = errors.New("setup error")
	// ErrTransport covers any other backend failure.
	ErrTransport = errors.New("transport error")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrPermissionDenied, "permission-denied"},
	{ErrNotFound, "not-found"},
	{ErrSubscription, "subscription-error"},
	{ErrSetup, "setup-error"},
	{ErrTransport, "transport-error"},
}

// KindOf names the store error kind carried by err, or "" when none applies.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
