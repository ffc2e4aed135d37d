package topology

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/mmcloughlin/geohash"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/tfl"
)

const (
	defaultLineConcurrency = 5
	persistBatchSize       = 100
	geohashPrecision       = 9
)

// API is the slice of the TfL client the sync engine needs.
type API interface {
	Lines(ctx context.Context, modeName string) ([]tfl.Line, error)
	StopPoints(ctx context.Context, lineID string) ([]tfl.StopPoint, error)
	RouteSequence(ctx context.Context, lineID string, direction string) (*tfl.RouteSequenceResponse, error)
}

// StationStore is the persistence surface the engine reads baselines from and
// writes changed stations to.
type StationStore interface {
	GetAll(ctx context.Context) ([]model.Station, error)
	GetAllByArrayContains(ctx context.Context, field string, value any) ([]model.Station, error)
	GetAllExcept(ctx context.Context, field string, value any) ([]model.Station, error)
	BatchUpsert(ctx context.Context, stations []model.Station) error
}

// Indexer receives changed stations for secondary indexing. Optional.
type Indexer interface {
	IndexStations(ctx context.Context, stations []model.Station) error
}

type SyncSummary struct {
	ModeName  string
	Lines     int
	Processed int
	Changed   int
}

// Engine reconciles the station topology of a mode or line against the TfL
// API. It builds a fresh in-memory view by merging stop points line by line
// on top of the persisted baseline, then writes back only the stations that
// actually changed.
type Engine struct {
	API   API
	Store StationStore
	Index Indexer

	LineConcurrency int
}

func (e *Engine) lineConcurrency() int {
	if e.LineConcurrency > 0 {
		return e.LineConcurrency
	}
	return defaultLineConcurrency
}

// SyncMode refreshes every line of a mode. Lines are processed concurrently;
// a line that fails is logged and skipped so the rest of the mode still
// completes.
func (e *Engine) SyncMode(ctx context.Context, modeName string) (SyncSummary, error) {
	startTime := time.Now()
	summary := SyncSummary{ModeName: modeName}

	baseline, err := e.loadBaseline(ctx, modeName, "")
	if err != nil {
		return summary, err
	}

	lines, err := e.API.Lines(ctx, modeName)
	if err != nil {
		return summary, err
	}
	if len(lines) == 0 {
		log.Warn().Str("mode", modeName).Msg("No lines found for mode")
		return summary, nil
	}
	summary.Lines = len(lines)

	merger := newStationMerger(baseline)

	linePool := pool.New().WithMaxGoroutines(e.lineConcurrency())
	for _, line := range lines {
		line := line
		linePool.Go(func() {
			if err := e.processLine(ctx, line.ID, line.Name, modeName, merger); err != nil {
				log.Error().Err(err).Str("mode", modeName).Str("line", line.ID).Msg("Failed to process line")
			}
		})
	}
	linePool.Wait()

	changed := changedStations(baseline, merger.fresh)
	summary.Processed = len(merger.fresh)
	summary.Changed = len(changed)

	if len(changed) > 0 {
		if err := e.saveInBatches(ctx, modeName, changed); err != nil {
			return summary, err
		}
		e.indexChanged(ctx, changed)
	}

	log.Info().
		Str("mode", modeName).
		Int("lines", summary.Lines).
		Int("processed", summary.Processed).
		Int("changed", summary.Changed).
		Dur("duration", time.Since(startTime)).
		Msg("Station sync completed")

	return summary, nil
}

// SyncLine refreshes the stations of a single line. The baseline is scoped to
// stations already carrying the line's search key so other modes and lines on
// shared stations survive the merge.
func (e *Engine) SyncLine(ctx context.Context, lineID string, modeName string) (SyncSummary, error) {
	summary := SyncSummary{ModeName: modeName, Lines: 1}

	baseline, err := e.loadBaseline(ctx, modeName, lineID)
	if err != nil {
		return summary, err
	}

	merger := newStationMerger(baseline)
	if err := e.processLine(ctx, lineID, lineID, modeName, merger); err != nil {
		return summary, err
	}

	changed := changedStations(baseline, merger.fresh)
	summary.Processed = len(merger.fresh)
	summary.Changed = len(changed)

	if len(changed) > 0 {
		if err := e.Store.BatchUpsert(ctx, changed); err != nil {
			return summary, err
		}
		e.indexChanged(ctx, changed)
	}

	log.Info().
		Str("line", lineID).
		Int("processed", summary.Processed).
		Int("changed", summary.Changed).
		Msg("Line sync completed")

	return summary, nil
}

// loadBaseline fetches the existing stations the sync pass may touch. A line
// sync only needs stations already tagged with that line. Bus and tram cover
// tens of thousands of stops, so they fetch by mode key; every other mode
// fetches everything except bus stops, which keeps shared multi-mode stations
// like Waterloo in the baseline.
func (e *Engine) loadBaseline(ctx context.Context, modeName string, lineID string) (map[string]*model.Station, error) {
	var stations []model.Station
	var err error

	if lineID != "" {
		stations, err = e.Store.GetAllByArrayContains(ctx, "searchkeys", lineID)
	} else if modeName == "bus" || modeName == "tram" {
		stations, err = e.Store.GetAllByArrayContains(ctx, "searchkeys", modeName)
	} else {
		stations, err = e.Store.GetAllExcept(ctx, "stoptype", BusCoachStopType)
	}
	if err != nil {
		return nil, err
	}

	baseline := make(map[string]*model.Station, len(stations))
	for i := range stations {
		baseline[stations[i].NaptanID] = &stations[i]
	}

	return baseline, nil
}

func (e *Engine) processLine(ctx context.Context, lineID string, lineName string, modeName string, merger *stationMerger) error {
	stopPoints, err := e.API.StopPoints(ctx, lineID)
	if err != nil {
		return err
	}
	if len(stopPoints) == 0 {
		return nil
	}

	inboundIDs := e.routeSequenceNaptanIDs(ctx, lineID, "inbound")
	outboundIDs := e.routeSequenceNaptanIDs(ctx, lineID, "outbound")

	expectedStopType := ExpectedStopType(modeName)
	for _, stopPoint := range stopPoints {
		if expectedStopType == "" || stopPoint.StopType != expectedStopType {
			continue
		}

		merger.Merge(stopPoint, lineID, lineName, modeName, inboundIDs, outboundIDs)
	}

	return nil
}

// routeSequenceNaptanIDs collects the stop ids served in one direction of a
// line. A failed lookup degrades to an empty set, the line still syncs
// without direction information.
func (e *Engine) routeSequenceNaptanIDs(ctx context.Context, lineID string, direction string) map[string]bool {
	naptanIDs := map[string]bool{}

	routeSequence, err := e.API.RouteSequence(ctx, lineID, direction)
	if err != nil {
		log.Warn().Err(err).Str("line", lineID).Str("direction", direction).Msg("Failed to fetch route sequence")
		return naptanIDs
	}
	if routeSequence == nil {
		return naptanIDs
	}

	for _, route := range routeSequence.OrderedLineRoutes {
		for _, naptanID := range route.NaptanIDs {
			naptanIDs[naptanID] = true
		}
	}

	return naptanIDs
}

// stationMerger accumulates the fresh view of the topology. Concurrent line
// workers can hit the same station, so each merge runs its whole
// read-modify-write as one critical section.
type stationMerger struct {
	mutex    sync.Mutex
	baseline map[string]*model.Station
	fresh    map[string]*model.Station
}

func newStationMerger(baseline map[string]*model.Station) *stationMerger {
	return &stationMerger{
		baseline: baseline,
		fresh:    map[string]*model.Station{},
	}
}

func (m *stationMerger) Merge(stopPoint tfl.StopPoint, lineID string, lineName string, modeName string, inboundIDs map[string]bool, outboundIDs map[string]bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	station := m.fresh[stopPoint.NaptanID]
	if station == nil {
		if existing := m.baseline[stopPoint.NaptanID]; existing != nil {
			// Seed from a deep copy so modes contributed by other sync
			// passes survive, and so the baseline stays pristine for the
			// change diff afterwards
			station = &model.Station{}
			if err := copier.CopyWithOption(station, existing, copier.Option{DeepCopy: true}); err != nil {
				log.Error().Err(err).Str("naptanid", stopPoint.NaptanID).Msg("Failed to copy baseline station")
				return
			}
		} else {
			station = &model.Station{
				NaptanID:   stopPoint.NaptanID,
				Modes:      map[string]*model.ModeGroup{},
				SearchKeys: []string{},
			}
		}
		m.fresh[stopPoint.NaptanID] = station
	}

	mergeLineInfo(station, stopPoint, lineID, lineName, modeName, inboundIDs, outboundIDs)
}

func mergeLineInfo(station *model.Station, stopPoint tfl.StopPoint, lineID string, lineName string, modeName string, inboundIDs map[string]bool, outboundIDs map[string]bool) {
	// Core fields always take the latest TfL values
	station.CommonName = stopPoint.CommonName
	station.Lat = stopPoint.Lat
	station.Lon = stopPoint.Lon
	station.StopType = stopPoint.StopType
	station.Indicator = stopPoint.Indicator
	station.StopLetter = stopPoint.StopLetter
	station.GeoHash = geohash.EncodeWithPrecision(stopPoint.Lat, stopPoint.Lon, geohashPrecision)
	station.LastUpdatedTime = time.Now().UTC().Format(time.RFC3339)

	if station.Modes == nil {
		station.Modes = map[string]*model.ModeGroup{}
	}
	modeGroup := station.Modes[modeName]
	if modeGroup == nil {
		modeGroup = &model.ModeGroup{
			ModeName: modeName,
			Lines:    map[string]*model.LineDetails{},
		}
		station.Modes[modeName] = modeGroup
	}

	lineDetails := modeGroup.Lines[lineID]
	if lineDetails == nil {
		lineDetails = &model.LineDetails{
			ID:         lineID,
			Name:       lineName,
			Directions: []string{},
		}
		modeGroup.Lines[lineID] = lineDetails
	}

	if inboundIDs[station.NaptanID] && !containsString(lineDetails.Directions, "inbound") {
		lineDetails.Directions = append(lineDetails.Directions, "inbound")
	}
	if outboundIDs[station.NaptanID] && !containsString(lineDetails.Directions, "outbound") {
		lineDetails.Directions = append(lineDetails.Directions, "outbound")
	}

	station.SearchKeys = GenerateSearchKeys(station)
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// changedStations returns the fresh stations that differ from the baseline.
func changedStations(baseline map[string]*model.Station, fresh map[string]*model.Station) []model.Station {
	var changed []model.Station
	for naptanID, station := range fresh {
		if hasStationChanged(baseline[naptanID], station) {
			changed = append(changed, *station)
		}
	}
	return changed
}

// hasStationChanged compares the fields a sync pass can move. LastUpdatedTime
// is deliberately excluded, otherwise every pass would rewrite every station.
func hasStationChanged(existing *model.Station, fresh *model.Station) bool {
	if existing == nil {
		return true
	}

	if existing.CommonName != fresh.CommonName {
		return true
	}
	if existing.Lat != fresh.Lat || existing.Lon != fresh.Lon {
		return true
	}
	if existing.StopType != fresh.StopType {
		return true
	}
	if existing.Indicator != fresh.Indicator || existing.StopLetter != fresh.StopLetter {
		return true
	}

	return !reflect.DeepEqual(existing.Modes, fresh.Modes) ||
		!reflect.DeepEqual(existing.SearchKeys, fresh.SearchKeys)
}

func (e *Engine) saveInBatches(ctx context.Context, modeName string, stations []model.Station) error {
	total := len(stations)
	saved := 0

	for start := 0; start < total; start += persistBatchSize {
		end := start + persistBatchSize
		if end > total {
			end = total
		}

		if err := e.Store.BatchUpsert(ctx, stations[start:end]); err != nil {
			return err
		}

		saved = end
		log.Info().
			Str("mode", modeName).
			Int("saved", saved).
			Int("total", total).
			Msg("Saved station batch")
	}

	return nil
}

func (e *Engine) indexChanged(ctx context.Context, stations []model.Station) {
	if e.Index == nil {
		return
	}

	if err := e.Index.IndexStations(ctx, stations); err != nil {
		log.Error().Err(err).Int("length", len(stations)).Msg("Failed to index changed stations")
	}
}
