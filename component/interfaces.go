package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of the service.
type Component interface {
	// Name is the unique registration name.
	Name() string

	Start(ctx context.Context) error

	// Stop releases resources. It is only called after a successful Start.
	Stop(ctx context.Context) error

	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	// Name is the display name, e.g. "HTTP Server". Name() is used when empty.
	Name string
	// Type groups the line: "server", "store", "cache", "storage".
	Type string
	// Details is a one-liner such as "qdrant:6333 collection=speaker_embeddings".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable components appear in the infrastructure section of the
// startup summary.
type Describable interface {
	Describe() Description
}

// Route is a registered HTTP route, for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by server components to list their routes.
type RouteProvider interface {
	Routes() []Route
}

// Overall folds component reports into one status: unhealthy wins over
// degraded, degraded over healthy. No reports is healthy.
func Overall(reports []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range reports {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
