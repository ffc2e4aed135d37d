package repository

import (
	"github.com/stationly/stationly/pkg/database"
	"github.com/stationly/stationly/pkg/model"
)

// Preconfigured repositories for the collections the service persists.

func Stations() *Repository[model.Station] {
	return &Repository[model.Station]{
		CollectionName: database.StationsCollection,
		IDField:        "naptanid",
		IDOf:           func(s model.Station) string { return s.NaptanID },
	}
}

func Modes() *Repository[model.TransportMode] {
	return &Repository[model.TransportMode]{
		CollectionName: database.ModesCollection,
		IDField:        "modename",
		IDOf:           func(m model.TransportMode) string { return m.ModeName },
	}
}

func Lines() *Repository[model.LineInfo] {
	return &Repository[model.LineInfo]{
		CollectionName: database.LinesCollection,
		IDField:        "id",
		IDOf:           func(l model.LineInfo) string { return l.ID },
	}
}

func LineRoutes() *Repository[model.LineRoute] {
	return &Repository[model.LineRoute]{
		CollectionName: database.LineRoutesCollection,
		IDField:        "id",
		IDOf:           func(r model.LineRoute) string { return r.ID },
	}
}

func LineStatuses() *Repository[model.LineStatus] {
	return &Repository[model.LineStatus]{
		CollectionName: database.LineStatusesCollection,
		IDField:        "id",
		IDOf:           func(s model.LineStatus) string { return s.ID },
	}
}
