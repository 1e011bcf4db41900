package realtime

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	. "github.com/rostsocial/rost/utils/log"
)

// Engine manages shared resources and execution lifecycle of each module. It
// maintains a shared event bus
type Engine struct {
	// A list of modules that will be run in this Engine. Module's lifetime is
	// bound to Engine's lifetime. Each Module will be ran in a separate routine.
	Modules []Module

	// The EventBus this engine managed. For now we use a golang channel
	// implementation for the EventBus, instances talk to each other through
	// Postgres LISTEN or the Redis relay.
	EventBus *gochannel.GoChannel

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Create a new Engine given the provided modules and event bus.
func NewEngine(ms []Module, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		EventBus: e,
		done:     make(chan struct{}),
	}
}

// Execute all Engine modules and wait untils all modules to finish execution,
// which happens once ctx is done or Shutdown is called.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer close(e.done)
	defer cancel()

	var wg sync.WaitGroup
	for idx := range e.Modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			Log.Infof("start engine module %s", m.Name())
			RunModuleWithGracefulRestart(ctx, m)
			Log.Infof("module %s finished execution", m.Name())
		}(e.Modules[idx])
	}

	// Block until all goroutine finished execution.
	wg.Wait()
}

// Shutdown stops every module, waits for Run to return and closes the bus.
// Must only be called after Run has started.
func (e *Engine) Shutdown() {
	Log.Infoln("starting graceful shutdown of the realtime engine")
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
		<-e.done
	}
	if err := e.EventBus.Close(); err != nil {
		Log.Errorf("fail to close event bus: %v", err)
	}
}
