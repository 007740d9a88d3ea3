// Package registry tracks which monitored services have been attached to
// the exposition registry. Attachment is the only mutable state in the
// exporter core: each registration flips false to true exactly once and
// never reverts, which is what keeps the periodic tick idempotent.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/internal/config"
	"github.com/hadoop-jmx-exporter/pkg/logger"
)

// AttachFunc attaches a collector for the given spec to the exposition
// registry. It is called at most once successfully per registration.
type AttachFunc func(spec config.ServiceSpec) error

// Registration wraps one ServiceSpec with its attach state. The mutex
// serializes the false-to-true transition against concurrent readers.
type Registration struct {
	Spec config.ServiceSpec

	mu       sync.Mutex
	attached bool
}

// Attached reports whether the collector has been attached.
func (r *Registration) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

func (r *Registration) markAttached() {
	r.mu.Lock()
	r.attached = true
	r.mu.Unlock()
}

// Registry holds the resolved list of monitored services.
type Registry struct {
	registrations []*Registration
}

// Build constructs one unattached Registration per spec.
func Build(specs []config.ServiceSpec) *Registry {
	regs := make([]*Registration, 0, len(specs))
	for _, spec := range specs {
		regs = append(regs, &Registration{Spec: spec})
	}
	return &Registry{registrations: regs}
}

// Registrations returns the registration list. The slice is shared; callers
// only inspect it.
func (r *Registry) Registrations() []*Registration {
	return r.registrations
}

// Len returns the number of registrations.
func (r *Registry) Len() int { return len(r.registrations) }

// Tick attaches every not-yet-attached registration. An attach failure is
// logged and leaves the registration unattached so the next tick retries it;
// already-attached registrations are skipped. Returns the number of
// registrations attached during this tick.
func (r *Registry) Tick(attach AttachFunc) int {
	attached := 0
	for _, reg := range r.registrations {
		if reg.Attached() {
			continue
		}
		if err := attach(reg.Spec); err != nil {
			logger.Error("failed to attach collector, will retry next tick",
				zap.Stringer("service", reg.Spec),
				zap.Error(err))
			continue
		}
		reg.markAttached()
		logger.Info("registered new collector",
			zap.Stringer("collector", reg.Spec.Type),
			zap.String("url", reg.Spec.URL))
		attached++
	}
	return attached
}
