package api

import (
	"github.com/JaimeStill/bleak/internal/threads"
	"github.com/JaimeStill/bleak/internal/transcripts"
	"github.com/JaimeStill/bleak/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Driver      *workflow.Driver
	Threads     threads.System
	Transcripts transcripts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	graph, err := workflow.BuildGraph(
		&workflow.Runtime{Model: runtime.Model, Logger: runtime.Logger},
		runtime.Workflow.Entry(),
	)
	if err != nil {
		return nil, err
	}

	driver := workflow.NewDriver(
		graph,
		runtime.Checkpoints,
		runtime.Logger,
		runtime.Workflow.MaxSteps,
	)

	transcriptsSystem := transcripts.New(
		driver,
		runtime.Storage,
		runtime.Logger,
		runtime.MaxListSize,
	)

	runtime.Lifecycle.OnDrain(func() {
		runtime.Logger.Info("waiting for active runs")
		driver.Drain()
	})

	if runtime.Workflow.AutoArchive {
		driver.OnFinish(transcripts.Hook(transcriptsSystem, runtime.Logger))
	}

	threadsSystem := threads.New(
		driver,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Driver:      driver,
		Threads:     threadsSystem,
		Transcripts: transcriptsSystem,
	}, nil
}
