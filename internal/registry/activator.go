package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// KnownServices lists the service keys in activation order.
var KnownServices = []string{
	"gmail",
	"drive",
	"calendar",
	"docs",
	"sheets",
	"chat",
	"forms",
	"slides",
	"tasks",
	"search",
}

// RegisterFunc registers the tools of one service.
type RegisterFunc func(s ToolAdder) error

// Activator registers service tool modules on demand.
type Activator struct {
	modules map[string]RegisterFunc
	logger  *slog.Logger
}

// NewActivator returns an activator with no modules.
func NewActivator(logger *slog.Logger) *Activator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activator{modules: make(map[string]RegisterFunc), logger: logger}
}

// Register adds the module for service. A second registration replaces the first.
func (a *Activator) Register(service string, fn RegisterFunc) {
	a.modules[service] = fn
}

// Has reports whether a module is registered for service.
func (a *Activator) Has(service string) bool {
	_, ok := a.modules[service]
	return ok
}

// Activate registers the tools of services on s.
//
// Known services are activated in KnownServices order whatever order they
// are given in, followed by any other registered services in the order given.
// Unknown keys are logged and skipped. The activated services are returned.
func (a *Activator) Activate(s ToolAdder, services []string) ([]string, error) {
	requested := make(map[string]bool, len(services))
	var extra []string
	for _, svc := range services {
		if requested[svc] {
			continue
		}
		if !a.Has(svc) {
			a.logger.Warn("unknown service in tools list, skipping", logging.Service(svc))
			continue
		}
		requested[svc] = true
		if !slices.Contains(KnownServices, svc) {
			extra = append(extra, svc)
		}
	}

	var order []string
	for _, svc := range KnownServices {
		if requested[svc] {
			order = append(order, svc)
		}
	}
	order = append(order, extra...)

	activated := make([]string, 0, len(order))
	for _, svc := range order {
		if err := a.modules[svc](s); err != nil {
			return activated, fmt.Errorf("failed to register %s tools: %w", svc, err)
		}
		activated = append(activated, svc)
		a.logger.Debug("activated service tools", logging.Service(svc))
	}
	return activated, nil
}
