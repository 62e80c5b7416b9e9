package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/api/memory"
	"fintrack/internal/api/rest"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case RESTBackend:
		if config.BaseURL == "" {
			return nil, fmt.Errorf("rest backend requires a base URL")
		}
		f.logger.Info("Initialized REST backend", "base_url", config.BaseURL)
		return &BackendResult{Backend: rest.New(config.BaseURL, nil)}, nil

	case MemoryBackend:
		var store *memory.Store
		if config.SeedEmail != "" {
			store = memory.NewSeeded(config.SeedEmail, config.SeedPassword)
			f.logger.Info("Initialized memory backend with demo account", "email", config.SeedEmail)
		} else {
			store = memory.New()
			f.logger.Info("Initialized memory backend")
		}
		return &BackendResult{Backend: store}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
