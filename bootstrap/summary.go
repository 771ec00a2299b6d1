package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/speakerkit/component"
)

// InfrastructureInfo is one line of the infrastructure section.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Summary prints what a binary started: its components, routes and live
// health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
	infrastructure  []InfrastructureInfo
	routes          []component.Route
}

// NewSummary creates a summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackInfrastructure adds a line for something that is not a registered
// component, such as an upstream producer.
func (s *Summary) TrackInfrastructure(name, typ, details string, port int) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{Name: name, Type: typ, Details: details, Port: port})
}

// collect gathers descriptions and routes from registered components.
func (s *Summary) collect(registry *component.Registry) {
	if registry == nil {
		return
	}
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			s.infrastructure = append(s.infrastructure, InfrastructureInfo{
				Name: name, Type: desc.Type, Details: desc.Details, Port: desc.Port,
			})
		}
		if rp, ok := c.(component.RouteProvider); ok {
			s.routes = append(s.routes, rp.Routes()...)
		}
	}
}

// Display collects from registry and writes the summary. registry may be
// nil.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	s.collect(registry)
	w := s.out

	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "\n📊 Infrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s [%s] %s: %s\n", treePrefix(i, len(s.infrastructure)), inf.Type, inf.Name, details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		results := registry.HealthAll(ctx)
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health (%s)\n", component.Overall(results))
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)),
					healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
