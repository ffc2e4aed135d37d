package model

// LineStatus is the persisted status record for one line.
type LineStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModeName string `json:"modeName"`

	StatusSeverityDescription string `json:"statusSeverityDescription"`
	Reason                    string `json:"reason,omitempty"`

	LastUpdatedTime string `json:"lastUpdatedTime"`
}
