package model

type TransportMode struct {
	ModeName    string `json:"modeName"`
	DisplayName string `json:"displayName"`
}

type LineInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModeName string `json:"modeName"`
}

// StationBrief is the lightweight station view served from the metadata cache.
type StationBrief struct {
	NaptanID   string   `json:"naptanId"`
	CommonName string   `json:"commonName"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Lines      []string `json:"lines"`
}

type Destination struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DirectionInfo struct {
	Direction    string         `json:"direction"`
	Destinations []*Destination `json:"destinations"`
}

// LineRoute groups a line's destinations by direction, deduplicated and
// order-preserving.
type LineRoute struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	ModeName   string           `json:"modeName"`
	Directions []*DirectionInfo `json:"directions"`
}
