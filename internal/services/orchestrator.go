// Package services starts and stops the long-running parts of the server in
// dependency order.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

// ServiceStatus represents the current state of a service.
type ServiceStatus string

const (
	StatusNotStarted ServiceStatus = "not_started"
	StatusStarting   ServiceStatus = "starting"
	StatusRunning    ServiceStatus = "running"
	StatusStopping   ServiceStatus = "stopping"
	StatusStopped    ServiceStatus = "stopped"
	StatusFailed     ServiceStatus = "failed"
)

// HealthStatus represents the health of a service.
type HealthStatus struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	CheckAt time.Time `json:"check_at"`
}

// Healthy returns a healthy status stamped now.
func Healthy() HealthStatus {
	return HealthStatus{Status: "healthy", CheckAt: time.Now()}
}

// Unhealthy returns an unhealthy status with a reason.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{Status: "unhealthy", Message: message, CheckAt: time.Now()}
}

// ManagedService is one component whose lifecycle the orchestrator owns.
type ManagedService interface {
	// Name identifies the service in logs and in Dependencies.
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() HealthStatus
	// Dependencies names the services that must be running first.
	Dependencies() []string
}

// ServiceInfo is a snapshot of one service.
type ServiceInfo struct {
	Name         string        `json:"name"`
	Status       ServiceStatus `json:"status"`
	Health       HealthStatus  `json:"health"`
	Dependencies []string      `json:"dependencies"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	StoppedAt    *time.Time    `json:"stopped_at,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
}

// Orchestrator starts services in dependency order and stops them in reverse.
type Orchestrator struct {
	services   map[string]ManagedService
	status     map[string]ServiceStatus
	startedAt  map[string]time.Time
	stoppedAt  map[string]time.Time
	lastErrors map[string]error
	mu         sync.RWMutex

	startTimeout time.Duration
	stopTimeout  time.Duration
	logger       *slog.Logger
}

// NewOrchestrator creates an empty orchestrator.
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		services:     make(map[string]ManagedService),
		status:       make(map[string]ServiceStatus),
		startedAt:    make(map[string]time.Time),
		stoppedAt:    make(map[string]time.Time),
		lastErrors:   make(map[string]error),
		startTimeout: 30 * time.Second,
		stopTimeout:  10 * time.Second,
		logger:       logger,
	}
}

// WithTimeouts bounds each individual Start and Stop call.
func (o *Orchestrator) WithTimeouts(start, stop time.Duration) *Orchestrator {
	o.startTimeout = start
	o.stopTimeout = stop
	return o
}

// Register adds a service. Names must be unique and non-empty.
func (o *Orchestrator) Register(service ManagedService) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	name := service.Name()
	if name == "" {
		return errors.ValidationError("service name cannot be empty").Build()
	}
	if _, exists := o.services[name]; exists {
		return errors.ValidationError(fmt.Sprintf("service %s already registered", name)).Build()
	}

	o.services[name] = service
	o.status[name] = StatusNotStarted
	o.logger.Debug("Service registered", "service", name, "dependencies", service.Dependencies())
	return nil
}

// StartAll starts every service. When one fails, the ones already running
// are stopped again and the failure is returned.
func (o *Orchestrator) StartAll(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, err := o.startOrder()
	if err != nil {
		return errors.ConfigError("failed to calculate service start order").WithCause(err).Build()
	}

	o.logger.Info("Starting services", "count", len(order), "order", order)
	for i, name := range order {
		if err := o.start(ctx, name); err != nil {
			started := slices.Clone(order[:i])
			slices.Reverse(started)
			for _, s := range started {
				if serr := o.stop(ctx, s); serr != nil {
					o.logger.Error("Error stopping service during cleanup", "service", s, logfields.Error(serr))
				}
			}
			return err
		}
	}
	o.logger.Info("All services started")
	return nil
}

// StopAll stops running services in reverse start order. Every service is
// attempted; the last failure is returned.
func (o *Orchestrator) StopAll(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, err := o.startOrder()
	if err != nil {
		return errors.ConfigError("failed to calculate service stop order").WithCause(err).Build()
	}
	slices.Reverse(order)

	o.logger.Info("Stopping services", "count", len(order), "order", order)
	var lastErr error
	for _, name := range order {
		if err := o.stop(ctx, name); err != nil {
			lastErr = err
			o.logger.Error("Error stopping service", "service", name, logfields.Error(err))
		}
	}
	if lastErr != nil {
		return errors.InternalError("some services failed to stop gracefully").WithCause(lastErr).Build()
	}
	o.logger.Info("All services stopped")
	return nil
}

// Info returns a snapshot of the named service.
func (o *Orchestrator) Info(name string) (ServiceInfo, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.info(name)
}

// AllInfo returns snapshots of every service sorted by name.
func (o *Orchestrator) AllInfo() []ServiceInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	names := o.sortedNames()
	infos := make([]ServiceInfo, 0, len(names))
	for _, name := range names {
		if info, ok := o.info(name); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

func (o *Orchestrator) info(name string) (ServiceInfo, bool) {
	service, exists := o.services[name]
	if !exists {
		return ServiceInfo{}, false
	}

	info := ServiceInfo{
		Name:         name,
		Status:       o.status[name],
		Dependencies: service.Dependencies(),
		Health:       service.Health(),
	}
	if t, ok := o.startedAt[name]; ok {
		info.StartedAt = &t
	}
	if t, ok := o.stoppedAt[name]; ok {
		info.StoppedAt = &t
	}
	if err := o.lastErrors[name]; err != nil {
		info.LastError = err.Error()
	}
	return info, true
}

func (o *Orchestrator) sortedNames() []string {
	names := make([]string, 0, len(o.services))
	for name := range o.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// startOrder is a depth-first topological sort over names in sorted order,
// so the result is stable between runs.
func (o *Orchestrator) startOrder() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if visiting[name] {
			return fmt.Errorf("circular dependency detected involving service: %s", name)
		}
		if visited[name] {
			return nil
		}
		service, exists := o.services[name]
		if !exists {
			return fmt.Errorf("service not found: %s", name)
		}

		visiting[name] = true
		for _, dep := range service.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range o.sortedNames() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (o *Orchestrator) start(ctx context.Context, name string) error {
	service := o.services[name]
	o.status[name] = StatusStarting

	startCtx, cancel := context.WithTimeout(ctx, o.startTimeout)
	defer cancel()

	began := time.Now()
	if err := service.Start(startCtx); err != nil {
		o.status[name] = StatusFailed
		o.lastErrors[name] = err
		if _, ok := errors.AsClassified(err); ok {
			return err
		}
		return errors.InternalError(fmt.Sprintf("failed to start service %s", name)).WithCause(err).Build()
	}

	o.status[name] = StatusRunning
	o.startedAt[name] = began
	o.lastErrors[name] = nil
	o.logger.Info("Service started", "service", name, logfields.Duration(time.Since(began)))
	return nil
}

func (o *Orchestrator) stop(ctx context.Context, name string) error {
	if o.status[name] != StatusRunning {
		return nil
	}
	service := o.services[name]
	o.status[name] = StatusStopping

	stopCtx, cancel := context.WithTimeout(ctx, o.stopTimeout)
	defer cancel()

	began := time.Now()
	if err := service.Stop(stopCtx); err != nil {
		o.status[name] = StatusFailed
		o.lastErrors[name] = err
		return err
	}

	o.status[name] = StatusStopped
	o.stoppedAt[name] = began
	o.logger.Info("Service stopped", "service", name, logfields.Duration(time.Since(began)))
	return nil
}
