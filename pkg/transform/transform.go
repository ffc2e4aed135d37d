package transform

import (
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/stationly/stationly/pkg/model"
)

// Predictions per direction are capped before pruning; the pruner handles the
// hard payload limit.
const maxPredictionsPerDirection = 10

type stationGroup struct {
	key     string
	station *model.StationPredictions
}

// Transform groups one poll cycle's arrivals into station snapshots keyed by
// their notification topic. Station groups are independent and processed in
// parallel.
func Transform(arrivals []model.ArrivalPrediction) map[string]*model.StationPredictions {
	now := time.Now().Format(time.RFC3339)

	byStation := map[string][]model.ArrivalPrediction{}
	for _, arrival := range arrivals {
		if arrival.NaptanID == "" || arrival.LineID == "" || arrival.Direction == "" {
			continue
		}

		byStation[arrival.NaptanID] = append(byStation[arrival.NaptanID], arrival)
	}

	p := pool.NewWithResults[stationGroup]()
	for stationID, stationArrivals := range byStation {
		stationID := stationID
		stationArrivals := stationArrivals

		p.Go(func() stationGroup {
			return stationGroup{
				key:     StationTopic(stationID),
				station: buildStation(stationID, stationArrivals, now),
			}
		})
	}

	stationGroups := map[string]*model.StationPredictions{}
	for _, group := range p.Wait() {
		stationGroups[group.key] = group.station
	}

	return stationGroups
}

func buildStation(stationID string, arrivals []model.ArrivalPrediction, now string) *model.StationPredictions {
	station := &model.StationPredictions{
		StationID:       stationID,
		StationName:     arrivals[0].StationName,
		LastUpdatedTime: now,
		Lines:           map[string]*model.LineData{},
	}

	for _, arrival := range arrivals {
		lineData := station.Lines[arrival.LineID]
		if lineData == nil {
			lineData = &model.LineData{
				LineID:     arrival.LineID,
				LineName:   arrival.LineName,
				Directions: map[string]*model.DirectionPredictions{},
			}
			station.Lines[arrival.LineID] = lineData
		}

		directionPredictions := lineData.Directions[arrival.Direction]
		if directionPredictions == nil {
			directionPredictions = &model.DirectionPredictions{}
			lineData.Directions[arrival.Direction] = directionPredictions
		}

		directionPredictions.Predictions = append(directionPredictions.Predictions, toPredictionItem(arrival))
	}

	for _, lineData := range station.Lines {
		for _, directionPredictions := range lineData.Directions {
			sortPredictions(directionPredictions.Predictions)

			if len(directionPredictions.Predictions) > maxPredictionsPerDirection {
				directionPredictions.Predictions = directionPredictions.Predictions[:maxPredictionsPerDirection]
			}
		}
	}

	return station
}

// sortPredictions orders ascending by expected arrival, missing estimates
// last. TfL timestamps are RFC3339 UTC so the lexicographic order matches the
// chronological one.
func sortPredictions(predictions []*model.PredictionItem) {
	sort.SliceStable(predictions, func(a, b int) bool {
		aTime := predictions[a].ExpectedArrival
		bTime := predictions[b].ExpectedArrival

		if aTime == "" {
			return false
		}
		if bTime == "" {
			return true
		}

		return aTime < bTime
	})
}

func toPredictionItem(arrival model.ArrivalPrediction) *model.PredictionItem {
	displayName := arrival.Towards
	if displayName == "" {
		displayName = arrival.DestinationName
	}

	return &model.PredictionItem{
		DestinationNaptanID: arrival.DestinationNaptanID,
		DestinationName:     arrival.DestinationName,
		DisplayName:         displayName,
		Towards:             arrival.Towards,
		PlatformName:        arrival.PlatformName,
		ExpectedArrival:     arrival.ExpectedArrival,
	}
}
