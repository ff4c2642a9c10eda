package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a provider is down but requests are still served.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector store cannot serve requests.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckDatabase  = "database"
	CheckIndex     = "index"
	CheckEmbedding = "embedding"
	CheckGenerator = "generator"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexChecker
	embedding Checker
	generator Checker
	logger    *zap.Logger
}

// New creates a Service. embedding and generator can be nil.
func New(db DBPinger, index IndexChecker, embedding, generator Checker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, index: index, embedding: embedding, generator: generator, logger: logger}
}

// Check runs health checks against all components. A storage failure makes
// the report unhealthy; a provider failure only degrades it, since the
// embedding fallback keeps ingestion and retrieval working.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("Database health check failed", zap.Error(err))
		checks[CheckDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[CheckDatabase] = CheckOK
	}

	if s.index != nil {
		ok, err := s.index.IndexReady(ctx)
		if err != nil || !ok {
			s.logger.Warn("Index health check failed", zap.Bool("exists", ok), zap.Error(err))
			checks[CheckIndex] = CheckError
			status = Unhealthy
		} else {
			checks[CheckIndex] = CheckOK
		}
	}

	for name, c := range map[string]Checker{CheckEmbedding: s.embedding, CheckGenerator: s.generator} {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			s.logger.Warn("Provider health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
