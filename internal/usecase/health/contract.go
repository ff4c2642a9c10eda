package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks that the vector index exists.
type IndexChecker interface {
	IndexReady(ctx context.Context) (bool, error)
}

// Checker is any component with a reachability probe: the embedding
// gateway and the chat backend.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
