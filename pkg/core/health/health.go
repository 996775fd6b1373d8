package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of the server or one of its checks
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Impact decides what a failing check does to the overall status
type Impact int

const (
	// Critical failures make the whole report unhealthy
	Critical Impact = iota
	// Optional failures only degrade the report
	Optional
)

// DefaultCheckTimeout bounds a single probe when the registry has no timeout
const DefaultCheckTimeout = 2 * time.Second

// Probe returns nil when the dependency it inspects works
type Probe func(ctx context.Context) error

// CheckResult is the outcome of one probe
type CheckResult struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Critical   bool   `json:"critical"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report is the body served on the health endpoint
type Report struct {
	Service       string        `json:"service"`
	Version       string        `json:"version"`
	Status        Status        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Checks        []CheckResult `json:"checks"`
}

type check struct {
	impact Impact
	probe  Probe
}

// Registry runs named probes and aggregates them into a Report
type Registry struct {
	mu      sync.RWMutex
	checks  map[string]check
	service string
	version string
	timeout time.Duration
	startAt time.Time
}

// NewRegistry creates a registry; timeout bounds every probe
func NewRegistry(service, version string, timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Registry{
		checks:  make(map[string]check),
		service: service,
		version: version,
		timeout: timeout,
		startAt: time.Now(),
	}
}

// Register adds or replaces the probe called name
func (r *Registry) Register(name string, impact Impact, probe Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check{impact: impact, probe: probe}
}

// Check runs all probes concurrently and returns the aggregated report
func (r *Registry) Check(ctx context.Context) Report {
	r.mu.RLock()
	checks := make(map[string]check, len(r.checks))
	for name, c := range r.checks {
		checks[name] = c
	}
	r.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
	)
	for name, c := range checks {
		wg.Add(1)
		go func(name string, c check) {
			defer wg.Done()
			result := r.run(ctx, name, c)
			rmu.Lock()
			results = append(results, result)
			rmu.Unlock()
		}(name, c)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	overall := StatusHealthy
	for _, result := range results {
		switch {
		case result.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case result.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}

	return Report{
		Service:       r.service,
		Version:       r.version,
		Status:        overall,
		UptimeSeconds: int64(time.Since(r.startAt).Seconds()),
		Checks:        results,
	}
}

func (r *Registry) run(ctx context.Context, name string, c check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := c.probe(ctx)
	result := CheckResult{
		Name:       name,
		Status:     StatusHealthy,
		Critical:   c.impact == Critical,
		Message:    "OK",
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Message = err.Error()
		result.Status = StatusUnhealthy
		if c.impact == Optional {
			result.Status = StatusDegraded
		}
	}
	return result
}

// ServeHTTP writes the report as JSON; an unhealthy report answers 503
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := r.Check(req.Context())
	status := http.StatusOK
	if report.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if req.Method == http.MethodGet {
		json.NewEncoder(w).Encode(report)
	}
}
