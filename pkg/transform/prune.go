package transform

import (
	"encoding/json"

	"github.com/stationly/stationly/pkg/model"
)

// MaxPayloadBytes leaves headroom under FCM's 4096 byte data message limit.
const MaxPayloadBytes = 4000

type PruneResult struct {
	Bytes     int
	Removed   int
	Exhausted bool
}

// Prune mutates a station snapshot in place, greedily dropping the prediction
// furthest in the future across the whole station until the serialized size
// fits limit or nothing more can be removed. It never errors; an oversized
// snapshot that cannot shrink further is reported as exhausted.
func Prune(station *model.StationPredictions, limit int) PruneResult {
	result := PruneResult{}

	payload, err := json.Marshal(station)
	if err != nil {
		result.Exhausted = true
		return result
	}
	result.Bytes = len(payload)

	for result.Bytes > limit {
		target := furthestDirection(station)
		if target == nil {
			result.Exhausted = true
			break
		}

		target.Predictions = target.Predictions[:len(target.Predictions)-1]
		result.Removed++

		payload, err = json.Marshal(station)
		if err != nil {
			result.Exhausted = true
			break
		}

		// Object overhead means a removal is not guaranteed to shrink the
		// payload; stop rather than loop forever.
		if len(payload) >= result.Bytes {
			result.Bytes = len(payload)
			result.Exhausted = result.Bytes > limit
			break
		}
		result.Bytes = len(payload)
	}

	return result
}

// furthestDirection finds the direction list whose final (latest) prediction
// is furthest in the future across every line of the station. Lists are
// already sorted ascending so the candidate is always the last element.
func furthestDirection(station *model.StationPredictions) *model.DirectionPredictions {
	var furthest *model.PredictionItem
	var target *model.DirectionPredictions

	for _, lineData := range station.Lines {
		for _, directionPredictions := range lineData.Directions {
			if len(directionPredictions.Predictions) == 0 {
				continue
			}

			last := directionPredictions.Predictions[len(directionPredictions.Predictions)-1]
			if furthest == nil || (last.ExpectedArrival != "" && furthest.ExpectedArrival != "" && last.ExpectedArrival > furthest.ExpectedArrival) {
				furthest = last
				target = directionPredictions
			}
		}
	}

	return target
}
