package ports

import "context"

// StoredResponse contains the response data to replay for a reused key.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
}

// IdempotencyStore lets order intake be retried safely by kiosks and phone channels.
// Keys are scoped per tenant.
type IdempotencyStore interface {
	Get(ctx context.Context, tenantID, key string) (*StoredResponse, error)
	Save(ctx context.Context, tenantID, key string, response StoredResponse) error
}
