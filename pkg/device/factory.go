package device

import (
	"context"
	"fmt"
	"log/slog"
)

// Open connects to a device with the given configuration.
// If cfg.Backend is BackendAuto, the backend is picked from the endpoints.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := resolveBackend(cfg)

	logger.Info("opening gaze device",
		"backend", backend,
		"endpoints", len(cfg.Endpoints),
		"queue_size", cfg.QueueSize,
	)

	switch backend {
	case BackendMock:
		return NewMockSession(cfg, logger, WithSynth(NewSynth(cfg.SampleInterval()))), nil
	case BackendWebSocket:
		sess, err := DialWebSocket(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return sess, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewOpener returns an Opener that calls Open with cfg on every use.
func NewOpener(cfg Config, logger *slog.Logger) Opener {
	return OpenerFunc(func(ctx context.Context) (Session, error) {
		return Open(ctx, cfg, logger)
	})
}

func resolveBackend(cfg Config) Backend {
	if cfg.Backend != BackendAuto {
		return cfg.Backend
	}
	if len(cfg.Endpoints) > 0 {
		return BackendWebSocket
	}
	return BackendMock
}

// AvailableBackends returns the list of selectable backends.
func AvailableBackends() []Backend {
	return []Backend{BackendAuto, BackendWebSocket, BackendMock}
}
