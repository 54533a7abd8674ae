package corpus

import "context"

// Provider fetches current entity snapshots from the ingestion/analytics
// pipeline. Implementations must return ErrNotFound for unknown ids.
type Provider interface {
	GetEntity(ctx context.Context, entityID string) (*Entity, error)
}
