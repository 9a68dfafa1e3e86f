// Package lifecycle runs the program's main task with signal handling and
// releases its resources in reverse order once the task returns.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Resource is something held open for the life of the task.
type Resource interface {
	Close() error
}

// CloseFunc adapts a close function into the Resource interface.
type CloseFunc func() error

// Close calls f.
func (f CloseFunc) Close() error { return f() }

// Lifecycle owns the resources opened during startup.
// Resources are closed in the reverse of the order they were added.
type Lifecycle struct {
	logger    *zap.Logger
	resources []namedResource
	mu        sync.Mutex
}

type namedResource struct {
	name     string
	resource Resource
}

// New creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named resource to close on shutdown.
//
// Precondition: name must be non-empty; r must be non-nil.
func (l *Lifecycle) Add(name string, r Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources = append(l.resources, namedResource{name: name, resource: r})
}

// Run calls task with a context cancelled on SIGINT or SIGTERM, then closes
// every resource.
//
// Postcondition: All resources are closed when this method returns; the
// result joins the task error with any close errors.
func (l *Lifecycle) Run(ctx context.Context, task func(ctx context.Context) error) error {
	start := time.Now()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := task(ctx)
	switch {
	case err == nil:
		l.logger.Info("task finished", zap.Duration("uptime", time.Since(start)))
	case ctx.Err() != nil:
		l.logger.Info("task interrupted, shutting down", zap.Error(err))
	default:
		l.logger.Error("task failed, shutting down", zap.Error(err))
	}

	return errors.Join(err, l.shutdown())
}

// Close releases every resource without running a task.
func (l *Lifecycle) Close() error {
	return l.shutdown()
}

func (l *Lifecycle) shutdown() error {
	l.mu.Lock()
	resources := l.resources
	l.resources = nil
	l.mu.Unlock()

	shutdownStart := time.Now()
	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		nr := resources[i]
		if err := nr.resource.Close(); err != nil {
			l.logger.Warn("closing resource failed",
				zap.String("resource", nr.name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("closing %s: %w", nr.name, err))
			continue
		}
		l.logger.Debug("resource closed", zap.String("resource", nr.name))
	}
	l.logger.Info("all resources closed",
		zap.Int("count", len(resources)),
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
	return errors.Join(errs...)
}
