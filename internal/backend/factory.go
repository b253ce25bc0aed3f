// Package backend selects the gateway implementation the client talks to.
package backend

import (
	"fmt"

	"spendwise/internal/api"
	"spendwise/internal/api/memory"
	"spendwise/internal/api/rest"
	"spendwise/internal/log"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the gateway and an optional cleanup function.
type Result struct {
	Gateway api.Gateway
	Cleanup CleanupFunc
}

// Factory creates gateways based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend builds the gateway for config. Every request it makes
// authenticates with tokens.
func (f *Factory) CreateBackend(config Config, tokens api.TokenSource) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RESTBackend:
		return f.createRESTBackend(config, tokens), nil
	case MemoryBackend:
		return f.createMemoryBackend(config, tokens)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) createRESTBackend(config Config, tokens api.TokenSource) *Result {
	client := rest.New(config.BaseURL, tokens, rest.WithLogger(f.logger))

	f.logger.Debug("Initialized REST backend", "base_url", client.BaseURL())

	return &Result{Gateway: client}
}

func (f *Factory) createMemoryBackend(config Config, tokens api.TokenSource) (*Result, error) {
	var opts []memory.Option
	if config.SnapshotPath != "" {
		opts = append(opts, memory.WithSnapshot(config.SnapshotPath))
	}
	store, err := memory.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Debug("Initialized memory backend", "snapshot", config.SnapshotPath)

	return &Result{Gateway: store.Client(tokens)}, nil
}
