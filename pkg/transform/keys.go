package transform

import (
	"fmt"
	"regexp"
	"strings"
)

// FCM topic names only allow [a-zA-Z0-9-_.~%]. Everything else becomes ~ so
// that station ids survive as valid topic segments.
var topicKeyDisallowed = regexp.MustCompile(`[^A-Z0-9\-_.~%]`)

// NormalizeKey upper-cases the input and replaces every disallowed character
// with ~. Normalizing an already-normalized string is a no-op.
func NormalizeKey(input string) string {
	return topicKeyDisallowed.ReplaceAllString(strings.ToUpper(input), "~")
}

// StationTopic returns the notification topic for a station's arrival snapshot.
func StationTopic(stationID string) string {
	return fmt.Sprintf("Station_%s", NormalizeKey(stationID))
}

// LineStatusTopic returns the notification topic for a line's status changes.
func LineStatusTopic(mode string, lineID string) string {
	return fmt.Sprintf("LineStatus_%s_%s", mode, lineID)
}
