package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/topology"
)

func TestGenerateSearchKeysCoversAllCombinations(t *testing.T) {
	station := &model.Station{
		NaptanID: "940GZZLUKSX",
		Modes: map[string]*model.ModeGroup{
			"tube": {
				ModeName: "tube",
				Lines: map[string]*model.LineDetails{
					"A": {ID: "A", Name: "A", Directions: []string{"inbound"}},
					"B": {ID: "B", Name: "B", Directions: []string{"inbound", "outbound"}},
				},
			},
		},
	}

	keys := topology.GenerateSearchKeys(station)

	assert.ElementsMatch(t, []string{
		"tube",
		"A", "B",
		"tube_A", "tube_B",
		"A_inbound",
		"B_inbound", "B_outbound",
		"tube_A_inbound",
		"tube_B_inbound", "tube_B_outbound",
	}, keys)
}

func TestGenerateSearchKeysDeterministic(t *testing.T) {
	station := &model.Station{
		NaptanID: "940GZZLUKSX",
		Modes: map[string]*model.ModeGroup{
			"tube": {
				ModeName: "tube",
				Lines: map[string]*model.LineDetails{
					"victoria": {ID: "victoria", Name: "Victoria", Directions: []string{"inbound", "outbound"}},
					"northern": {ID: "northern", Name: "Northern", Directions: []string{"outbound"}},
				},
			},
			"national-rail": {
				ModeName: "national-rail",
				Lines: map[string]*model.LineDetails{
					"thameslink": {ID: "thameslink", Name: "Thameslink", Directions: []string{}},
				},
			},
		},
	}

	first := topology.GenerateSearchKeys(station)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, topology.GenerateSearchKeys(station))
	}
}

func TestGenerateSearchKeysNoModes(t *testing.T) {
	keys := topology.GenerateSearchKeys(&model.Station{NaptanID: "490000184Z"})
	assert.Empty(t, keys)
}
