package model

// LineDetails records which directions of a line serve a station.
type LineDetails struct {
	ID         string   `json:"id" groups:"basic,detailed"`
	Name       string   `json:"name" groups:"basic,detailed"`
	Directions []string `json:"directions" groups:"basic,detailed"`
}

type ModeGroup struct {
	ModeName string                  `json:"modeName" groups:"basic,detailed"`
	Lines    map[string]*LineDetails `json:"lines" groups:"detailed"`
}

// Station is the persistent topology aggregate for one stop point. Modes and
// lines contributed by other sync passes must be preserved on merge, never
// destructively replaced.
type Station struct {
	NaptanID   string  `json:"naptanId" groups:"basic,detailed"`
	CommonName string  `json:"commonName" groups:"basic,detailed"`
	Lat        float64 `json:"lat" groups:"basic,detailed"`
	Lon        float64 `json:"lon" groups:"basic,detailed"`
	GeoHash    string  `json:"geoHash" groups:"basic,detailed"`

	StopType   string `json:"stopType" groups:"basic,detailed"`
	Indicator  string `json:"indicator,omitempty" groups:"basic,detailed"`
	StopLetter string `json:"stopLetter,omitempty" groups:"basic,detailed"`

	Modes map[string]*ModeGroup `json:"modes" groups:"detailed"`

	// Union over all (mode, line, direction) combinations of
	// {mode, lineId, mode_lineId, lineId_direction, mode_lineId_direction}
	SearchKeys []string `json:"searchKeys" groups:"detailed"`

	LastUpdatedTime string `json:"lastUpdatedTime" groups:"detailed"`
}
