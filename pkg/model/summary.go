package model

import "time"

const (
	RefreshStatusSuccess = "SUCCESS"
	RefreshStatusNoData  = "NO_DATA"
	RefreshStatusFailed  = "FAILED"
)

// RefreshSummary is the per-mode outcome of one poll cycle. It is returned to
// the caller and never persisted.
type RefreshSummary struct {
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`

	ArrivalsReceived int `json:"arrivalsReceived"`
	StationKeys      int `json:"stationKeys"`
	TopicsPublished  int `json:"topicsPublished"`

	ProcessingTime time.Duration `json:"processingTimeMs"`
	Message        string        `json:"message"`
}
