package tfl

// Parse structs for the TfL Unified API endpoints we consume. Only the fields
// we read are declared; everything else in the response is ignored.

type Mode struct {
	ModeName     string `json:"modeName"`
	IsTflService bool   `json:"isTflService"`
}

type Line struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModeName string `json:"modeName"`

	RouteSections []RouteSection `json:"routeSections"`
	LineStatuses  []LineStatus   `json:"lineStatuses"`
}

type RouteSection struct {
	Name            string `json:"name"`
	Direction       string `json:"direction"`
	Destination     string `json:"destination"`
	DestinationName string `json:"destinationName"`
}

type LineStatus struct {
	StatusSeverity            int    `json:"statusSeverity"`
	StatusSeverityDescription string `json:"statusSeverityDescription"`
	Reason                    string `json:"reason"`
}

type StopPoint struct {
	NaptanID   string  `json:"naptanId"`
	CommonName string  `json:"commonName"`
	StopType   string  `json:"stopType"`
	Indicator  string  `json:"indicator"`
	StopLetter string  `json:"stopLetter"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`

	Modes []string        `json:"modes"`
	Lines []StopPointLine `json:"lines"`
}

type StopPointLine struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RouteSequenceResponse struct {
	LineName          string             `json:"lineName"`
	Direction         string             `json:"direction"`
	OrderedLineRoutes []OrderedLineRoute `json:"orderedLineRoutes"`
}

type OrderedLineRoute struct {
	Name      string   `json:"name"`
	NaptanIDs []string `json:"naptanIds"`
}
