package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store answers but lookups cannot be served.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates that the checked record is not stored.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	Descriptors int
}

// Service coordinates health checks.
type Service struct {
	db          DBPinger
	descriptors DescriptorLoader
}

// New creates a Service. descriptors can be nil.
func New(db DBPinger, descriptors DescriptorLoader) *Service {
	return &Service{db: db, descriptors: descriptors}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Status: Healthy, Checks: checks}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		report.Status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.descriptors != nil {
		checks["descriptors"] = s.checkDescriptors(ctx, &report)
		if checks["descriptors"] != CheckOK && report.Status == Healthy {
			report.Status = Degraded
		}
	}

	return report
}

// checkDescriptors tests presence first so a missing table is told apart
// from one that cannot be read or decoded.
func (s *Service) checkDescriptors(ctx context.Context, report *Report) CheckResult {
	ok, err := s.descriptors.Present(ctx)
	if err != nil {
		return CheckError
	}
	if !ok {
		return CheckMissing
	}
	ds, err := s.descriptors.Load(ctx)
	if err != nil {
		return CheckError
	}
	report.Descriptors = len(ds)
	return CheckOK
}
