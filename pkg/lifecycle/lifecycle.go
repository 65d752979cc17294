// Package lifecycle coordinates startup and phased shutdown of the service.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
// Shutdown runs in two phases: drain hooks stop work in flight, then
// shutdown hooks waiting on Drained release the resources that work used.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	drainWg    sync.WaitGroup
	shutdownWg sync.WaitGroup
	drained    chan struct{}
	drainOnce  sync.Once
	ready      bool
	readyMu    sync.RWMutex
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
	}
}

// Context returns the coordinator's context, cancelled when shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Drained is closed once every drain hook has returned after shutdown began.
func (c *Coordinator) Drained() <-chan struct{} {
	return c.drained
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnDrain registers a function that runs when shutdown begins, before
// hooks waiting on Drained are released.
func (c *Coordinator) OnDrain(fn func()) {
	c.drainWg.Go(func() {
		<-c.ctx.Done()
		fn()
	})
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done(), or on <-c.Drained()
// when they close resources drain hooks depend on.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Ready returns true after all startup hooks have completed and before
// shutdown begins.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready && c.ctx.Err() == nil
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown cancels the context, waits for drain hooks, then waits for
// shutdown hooks, all within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	go c.drainOnce.Do(func() {
		c.drainWg.Wait()
		close(c.drained)
	})

	done := make(chan struct{})
	go func() {
		<-c.drained
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
