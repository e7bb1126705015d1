// Package supervisor runs the long-lived parts of the API process under a
// suture tree: the servers in one branch, background sync in another.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig matches suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree keeps a sync failure from taking the API down with it.
type Tree struct {
	root *suture.Supervisor
	api  *suture.Supervisor
	sync *suture.Supervisor
}

func NewTree(cfg TreeConfig) *Tree {
	def := DefaultTreeConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = def.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = def.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	spec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = logEvent

	root := suture.New("picky", rootSpec)
	api := suture.New("api-layer", spec)
	sync := suture.New("sync-layer", spec)
	root.Add(api)
	root.Add(sync)
	return &Tree{root: root, api: api, sync: sync}
}

func logEvent(e suture.Event) {
	ev := log.Warn()
	if e.Type() == suture.EventTypeResume {
		ev = log.Info()
	}
	ev.Str("event", e.String()).Fields(e.Map()).Msg("supervisor event")
}

func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken { return t.api.Add(svc) }

func (t *Tree) AddSyncService(svc suture.Service) suture.ServiceToken { return t.sync.Add(svc) }

// Serve blocks until ctx is cancelled or the root supervisor gives up.
func (t *Tree) Serve(ctx context.Context) error { return t.root.Serve(ctx) }
