package health

import "context"

// DBPinger checks document store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GenerationChecker checks text-generation backend availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}
