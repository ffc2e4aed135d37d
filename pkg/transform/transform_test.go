package transform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/transform"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "940GZZLUMGT", transform.NormalizeKey("940GZZLUMGT"))
	assert.Equal(t, "KING~S~CROSS", transform.NormalizeKey("King's Cross"))
	assert.Equal(t, "HMS~BELFAST~PIER", transform.NormalizeKey("HMS Belfast Pier"))
	assert.Equal(t, "A-B_C.D~E%F", transform.NormalizeKey("a-b_c.d~e%f"))
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{
		"940GZZLUMGT",
		"King's Cross St. Pancras",
		"élizabeth line!",
		"  spaced out  ",
		"",
	}

	for _, input := range inputs {
		once := transform.NormalizeKey(input)
		assert.Equal(t, once, transform.NormalizeKey(once), "normalize should be a no-op on %q", once)
	}
}

func TestStationTopic(t *testing.T) {
	assert.Equal(t, "Station_940GZZLUMGT", transform.StationTopic("940GZZLUMGT"))
	assert.Equal(t, "LineStatus_tube_northern", transform.LineStatusTopic("tube", "northern"))
}

func arrival(station, line, direction, eta string) model.ArrivalPrediction {
	return model.ArrivalPrediction{
		NaptanID:        station,
		StationName:     station + " Station",
		LineID:          line,
		LineName:        line,
		Direction:       direction,
		DestinationName: "Somewhere",
		ExpectedArrival: eta,
	}
}

func TestTransformGroupsAndOrders(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	arrivals := []model.ArrivalPrediction{
		arrival("S1", "L1", "inbound", base.Add(60*time.Second).Format(time.RFC3339)),
		arrival("S1", "L1", "inbound", base.Add(10*time.Second).Format(time.RFC3339)),
	}

	groups := transform.Transform(arrivals)
	require.Len(t, groups, 1)

	station := groups["Station_S1"]
	require.NotNil(t, station)
	assert.Equal(t, "S1", station.StationID)
	assert.Equal(t, "S1 Station", station.StationName)

	line := station.Lines["L1"]
	require.NotNil(t, line)

	predictions := line.Directions["inbound"].Predictions
	require.Len(t, predictions, 2)
	assert.Equal(t, base.Add(10*time.Second).Format(time.RFC3339), predictions[0].ExpectedArrival)
	assert.Equal(t, base.Add(60*time.Second).Format(time.RFC3339), predictions[1].ExpectedArrival)
}

func TestTransformDiscardsIncompleteRecords(t *testing.T) {
	arrivals := []model.ArrivalPrediction{
		arrival("", "L1", "inbound", ""),
		arrival("S1", "", "inbound", ""),
		arrival("S1", "L1", "", ""),
		arrival("S1", "L1", "inbound", ""),
	}

	groups := transform.Transform(arrivals)
	require.Len(t, groups, 1)
	require.Len(t, groups["Station_S1"].Lines["L1"].Directions["inbound"].Predictions, 1)
}

func TestTransformMissingEtaSortsLast(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	arrivals := []model.ArrivalPrediction{
		arrival("S1", "L1", "inbound", ""),
		arrival("S1", "L1", "inbound", base.Add(30*time.Second).Format(time.RFC3339)),
		arrival("S1", "L1", "inbound", base.Add(5*time.Second).Format(time.RFC3339)),
	}

	predictions := transform.Transform(arrivals)["Station_S1"].Lines["L1"].Directions["inbound"].Predictions
	require.Len(t, predictions, 3)
	assert.Equal(t, base.Add(5*time.Second).Format(time.RFC3339), predictions[0].ExpectedArrival)
	assert.Equal(t, base.Add(30*time.Second).Format(time.RFC3339), predictions[1].ExpectedArrival)
	assert.Empty(t, predictions[2].ExpectedArrival)
}

func TestTransformCapsPredictionsPerDirection(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var arrivals []model.ArrivalPrediction
	for i := 0; i < 25; i++ {
		arrivals = append(arrivals, arrival("S1", "L1", "outbound", base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339)))
	}

	predictions := transform.Transform(arrivals)["Station_S1"].Lines["L1"].Directions["outbound"].Predictions
	assert.Len(t, predictions, 10)
}

func TestTransformDisplayNameFallsBackToDestination(t *testing.T) {
	withTowards := arrival("S1", "L1", "inbound", "")
	withTowards.Towards = "Morden via Bank"

	withoutTowards := arrival("S2", "L1", "inbound", "")

	groups := transform.Transform([]model.ArrivalPrediction{withTowards, withoutTowards})

	assert.Equal(t, "Morden via Bank", groups["Station_S1"].Lines["L1"].Directions["inbound"].Predictions[0].DisplayName)
	assert.Equal(t, "Somewhere", groups["Station_S2"].Lines["L1"].Directions["inbound"].Predictions[0].DisplayName)
}
