package model

// PredictionItem is one prediction inside a station snapshot.
type PredictionItem struct {
	DestinationNaptanID string `json:"destinationNaptanId,omitempty"`
	DestinationName     string `json:"destinationName,omitempty"`
	DisplayName         string `json:"displayName,omitempty"`
	Towards             string `json:"towards,omitempty"`
	PlatformName        string `json:"platformName,omitempty"`

	// RFC3339, empty when TfL supplied no estimate
	ExpectedArrival string `json:"expectedArrival,omitempty"`
}

// DirectionPredictions holds the ordered predictions for one (line, direction)
// pair, ascending by expected arrival with missing estimates last.
type DirectionPredictions struct {
	Predictions []*PredictionItem `json:"predictions"`
}

type LineData struct {
	LineID   string `json:"lineId"`
	LineName string `json:"lineName"`

	Directions map[string]*DirectionPredictions `json:"directions"`
}

// StationPredictions is the per-station snapshot built each poll cycle. It is
// never merged across cycles - lines or directions with no current arrivals
// are simply absent.
type StationPredictions struct {
	StationID       string `json:"stationId"`
	StationName     string `json:"stationName"`
	LastUpdatedTime string `json:"lastUpdatedTime"`

	Lines map[string]*LineData `json:"lines"`
}
