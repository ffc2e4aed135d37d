package routes

import (
	"context"

	"github.com/stationly/stationly/pkg/linestatus"
	"github.com/stationly/stationly/pkg/meta"
	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/notify"
	"github.com/stationly/stationly/pkg/poller"
	"github.com/stationly/stationly/pkg/topology"
)

// ArrivalSource serves on-demand arrival lookups for a single station.
type ArrivalSource interface {
	ArrivalsForStation(ctx context.Context, naptanID string) ([]model.ArrivalPrediction, error)
}

// Dependencies carries the wired services the route handlers call into.
type Dependencies struct {
	Meta       *meta.Service
	LineStatus *linestatus.Service
	Topology   *topology.Engine
	Poller     *poller.Orchestrator
	Publisher  *notify.Publisher
	Arrivals   ArrivalSource

	Modes []string
}
