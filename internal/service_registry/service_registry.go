package service_registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/pulse-agent/internal/registry"
	"github.com/benmeehan/pulse-agent/internal/services"
	"github.com/benmeehan/pulse-agent/internal/utils"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of the services bound to one connection.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	conn        ws.Connection
	sessionInfo identity.SessionInfoInterface
	now         func() time.Time
	Logger      zerolog.Logger

	done     chan struct{}
	doneOnce sync.Once
	err      error
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(conn ws.Connection, sessionInfo identity.SessionInfoInterface, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:    make(map[string]registry.Service),
		conn:        conn,
		sessionInfo: sessionInfo,
		now:         time.Now,
		Logger:      logger,
		done:        make(chan struct{}),
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)

		if t, ok := svc.(registry.Terminator); ok {
			go sr.watch(name, t)
		}
	}

	return nil
}

// watch closes the registry's done channel when a self-terminating service exits.
func (sr *ServiceRegistry) watch(name string, t registry.Terminator) {
	<-t.Done()
	sr.doneOnce.Do(func() {
		sr.err = t.Err()
		if sr.err != nil {
			sr.err = fmt.Errorf("%s: %w", name, sr.err)
		}
		close(sr.done)
	})
}

// Done is closed when the first self-terminating service exits.
func (sr *ServiceRegistry) Done() <-chan struct{} {
	return sr.done
}

// Err returns the error of the service that closed Done.
func (sr *ServiceRegistry) Err() error {
	select {
	case <-sr.done:
		return sr.err
	default:
		return nil
	}
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers the connection services based on configuration.
// The message service goes last: stopping it blocks until the connection is closed,
// so nothing started after it can fail and trigger that stop.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	servicesInOrder := []struct {
		name        string
		constructor func() (registry.Service, error)
	}{
		{
			name: "heartbeat",
			constructor: func() (registry.Service, error) {
				return services.NewHeartbeatService(
					config.Services.Heartbeat.Interval,
					config.Services.Heartbeat.ProtocolVersion,
					sr.sessionInfo,
					sr.conn,
					sr.Logger,
				), nil
			},
		},
		{
			name: "message",
			constructor: func() (registry.Service, error) {
				return services.NewMessageService(
					sr.conn,
					sr.Logger,
					services.NewAuthHandler(sr.sessionInfo, sr.conn, sr.now),
					services.NewPongHandler(sr.conn),
				), nil
			},
		},
	}

	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		serviceInstance, err := svc.constructor()
		if err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
			return err
		}
		sr.RegisterService(svc.name, serviceInstance)
		registeredServices = append(registeredServices, svc.name)
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
