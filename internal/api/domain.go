package api

import (
	"github.com/JaimeStill/flora/internal/identifications"
	"github.com/JaimeStill/flora/internal/identify"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Identifications identifications.System
	Identify        *identify.Service
}

// NewDomain creates all domain systems from the API runtime and binds the
// recognition service to the job dispatcher.
func NewDomain(runtime *Runtime) *Domain {
	identificationsSystem := identifications.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Jobs,
		runtime.Logger,
		runtime.URLWorkers,
	)

	identifyService := identify.New(
		identificationsSystem,
		runtime.Storage,
		runtime.PlantNet,
		runtime.Logger,
	)

	runtime.Jobs.Handle(identifyService.Run)
	runtime.Jobs.OnDrop(identifyService.Abandon)

	return &Domain{
		Identifications: identificationsSystem,
		Identify:        identifyService,
	}
}
