package topology

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/stationly/stationly/pkg/model"
)

// GenerateSearchKeys rebuilds a station's search key set from its modes and
// lines. For every (mode, line, direction) combination it emits the keys
// {mode, lineId, mode_lineId, lineId_direction, mode_lineId_direction}. The
// result is sorted so repeated generation over the same station compares
// equal during change detection.
func GenerateSearchKeys(station *model.Station) []string {
	keys := map[string]bool{}

	for modeName, modeGroup := range station.Modes {
		keys[modeName] = true

		for lineID, lineDetails := range modeGroup.Lines {
			keys[lineID] = true
			keys[fmt.Sprintf("%s_%s", modeName, lineID)] = true

			for _, direction := range lineDetails.Directions {
				keys[fmt.Sprintf("%s_%s", lineID, direction)] = true
				keys[fmt.Sprintf("%s_%s_%s", modeName, lineID, direction)] = true
			}
		}
	}

	searchKeys := make([]string, 0, len(keys))
	for key := range keys {
		searchKeys = append(searchKeys, key)
	}
	slices.Sort(searchKeys)

	return searchKeys
}
