package meta

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/topology"
	"github.com/stationly/stationly/pkg/util"
)

const (
	cacheKeyModes          = "meta:modes"
	cacheKeyLinesPrefix    = "meta:lines:"
	cacheKeyStationsPrefix = "meta:stations:"
	cacheKeyRoutePrefix    = "meta:route:"
)

// exemptModes are TfL services we never surface to clients.
var exemptModes = map[string]bool{
	"national-rail":   true,
	"tram":            true,
	"river-bus":       true,
	"cable-car":       true,
	"river-tour":      true,
	"cycle-hire":      true,
	"replacement-bus": true,
}

var displayNames = map[string]string{
	"tube":           "Tube",
	"dlr":            "DLR",
	"overground":     "Overground",
	"elizabeth-line": "Elizabeth Line",
	"bus":            "Bus",
}

// API is the slice of the TfL client the metadata layer needs.
type API interface {
	Modes(ctx context.Context) ([]tfl.Mode, error)
	Lines(ctx context.Context, mode string) ([]tfl.Line, error)
	StopPoints(ctx context.Context, lineID string) ([]tfl.StopPoint, error)
	LineRoute(ctx context.Context, lineID string) (*tfl.Line, error)
}

type ModeStore interface {
	BatchUpsert(ctx context.Context, modes []model.TransportMode) error
}

type LineStore interface {
	BatchUpsert(ctx context.Context, lines []model.LineInfo) error
}

type RouteStore interface {
	BatchUpsert(ctx context.Context, routes []model.LineRoute) error
}

// Service reads reference metadata through a Redis cache. On a miss it asks
// TfL, fills the cache and persists the result so it survives cache loss.
// The stores are optional; caching still works without them.
type Service struct {
	API   API
	Cache *cache.Cache[string]

	Modes  ModeStore
	Lines  LineStore
	Routes RouteStore
}

func (s *Service) cacheGet(ctx context.Context, key string, target any) bool {
	if s.Cache == nil {
		return false
	}

	cached, err := s.Cache.Get(ctx, key)
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to decode cached value")
		return false
	}

	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode value for cache")
		return
	}

	if err := s.Cache.Set(ctx, key, string(jsonBytes)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}

// GetModes returns the client-facing transport modes: TfL services minus the
// exempt ones, with display names applied.
func (s *Service) GetModes(ctx context.Context) ([]model.TransportMode, error) {
	var modes []model.TransportMode
	if s.cacheGet(ctx, cacheKeyModes, &modes) {
		return modes, nil
	}

	rawModes, err := s.API.Modes(ctx)
	if err != nil {
		return nil, err
	}

	for _, rawMode := range rawModes {
		if !rawMode.IsTflService || exemptModes[rawMode.ModeName] {
			continue
		}

		displayName := displayNames[rawMode.ModeName]
		if displayName == "" {
			displayName = util.Capitalize(rawMode.ModeName)
		}

		modes = append(modes, model.TransportMode{
			ModeName:    rawMode.ModeName,
			DisplayName: displayName,
		})
	}

	s.cacheSet(ctx, cacheKeyModes, modes)
	if s.Modes != nil && len(modes) > 0 {
		if err := s.Modes.BatchUpsert(ctx, modes); err != nil {
			log.Error().Err(err).Msg("Failed to persist transport modes")
		}
	}

	return modes, nil
}

func (s *Service) GetLines(ctx context.Context, mode string) ([]model.LineInfo, error) {
	cacheKey := cacheKeyLinesPrefix + mode

	var lines []model.LineInfo
	if s.cacheGet(ctx, cacheKey, &lines) {
		return lines, nil
	}

	rawLines, err := s.API.Lines(ctx, mode)
	if err != nil {
		return nil, err
	}

	for _, rawLine := range rawLines {
		lines = append(lines, model.LineInfo{
			ID:       rawLine.ID,
			Name:     rawLine.Name,
			ModeName: rawLine.ModeName,
		})
	}

	s.cacheSet(ctx, cacheKey, lines)
	if s.Lines != nil && len(lines) > 0 {
		if err := s.Lines.BatchUpsert(ctx, lines); err != nil {
			log.Error().Err(err).Str("mode", mode).Msg("Failed to persist lines")
		}
	}

	return lines, nil
}

// GetStationsOnLine returns the stations of a line, keeping only stop points
// whose stop type belongs to one of their advertised modes. That drops
// platform and entrance level records.
func (s *Service) GetStationsOnLine(ctx context.Context, lineID string) ([]model.StationBrief, error) {
	cacheKey := cacheKeyStationsPrefix + lineID

	var stations []model.StationBrief
	if s.cacheGet(ctx, cacheKey, &stations) {
		return stations, nil
	}

	stopPoints, err := s.API.StopPoints(ctx, lineID)
	if err != nil {
		return nil, err
	}

	for _, stopPoint := range stopPoints {
		if !isStationStopPoint(stopPoint) {
			continue
		}

		lineIDs := make([]string, 0, len(stopPoint.Lines))
		for _, line := range stopPoint.Lines {
			lineIDs = append(lineIDs, line.ID)
		}

		stations = append(stations, model.StationBrief{
			NaptanID:   stopPoint.NaptanID,
			CommonName: stopPoint.CommonName,
			Lat:        stopPoint.Lat,
			Lon:        stopPoint.Lon,
			Lines:      lineIDs,
		})
	}

	s.cacheSet(ctx, cacheKey, stations)

	return stations, nil
}

func isStationStopPoint(stopPoint tfl.StopPoint) bool {
	for _, mode := range stopPoint.Modes {
		if topology.ExpectedStopType(strings.ToLower(mode)) == stopPoint.StopType {
			return true
		}
	}
	return false
}

// GetLineRoute returns a line's destinations grouped by direction, deduped
// while preserving the order TfL lists them in.
func (s *Service) GetLineRoute(ctx context.Context, lineID string) (*model.LineRoute, error) {
	cacheKey := cacheKeyRoutePrefix + lineID

	var route model.LineRoute
	if s.cacheGet(ctx, cacheKey, &route) {
		return &route, nil
	}

	rawRoute, err := s.API.LineRoute(ctx, lineID)
	if err != nil {
		return nil, err
	}

	route = model.LineRoute{
		ID:       rawRoute.ID,
		Name:     rawRoute.Name,
		ModeName: rawRoute.ModeName,
	}

	var directionOrder []string
	destinationsByDirection := map[string][]string{}
	destinationNames := map[string]string{}

	for _, section := range rawRoute.RouteSections {
		if section.Direction == "" || section.Destination == "" || section.DestinationName == "" {
			continue
		}

		if _, seen := destinationsByDirection[section.Direction]; !seen {
			directionOrder = append(directionOrder, section.Direction)
		}
		destinationsByDirection[section.Direction] = append(destinationsByDirection[section.Direction], section.Destination)

		if destinationNames[section.Destination] == "" {
			destinationNames[section.Destination] = section.DestinationName
		}
	}

	for _, direction := range directionOrder {
		directionInfo := &model.DirectionInfo{Direction: direction}

		for _, destination := range util.RemoveDuplicateStrings(destinationsByDirection[direction], nil) {
			directionInfo.Destinations = append(directionInfo.Destinations, &model.Destination{
				ID:   destination,
				Name: destinationNames[destination],
			})
		}

		route.Directions = append(route.Directions, directionInfo)
	}

	s.cacheSet(ctx, cacheKey, route)
	if s.Routes != nil {
		if err := s.Routes.BatchUpsert(ctx, []model.LineRoute{route}); err != nil {
			log.Error().Err(err).Str("line", lineID).Msg("Failed to persist line route")
		}
	}

	return &route, nil
}
