package topology

// BusCoachStopType marks on-street bus and coach stops. There are over twenty
// thousand of them, so baseline fetches for rail-like modes exclude this stop
// type instead of scanning the whole collection.
const BusCoachStopType = "NaptanPublicBusCoachTram"

// modeStopTypes maps each transport mode to the NaPTAN stop type its stations
// carry. Stop points of any other type returned for a line are ignored, which
// filters out entrance and platform level records.
var modeStopTypes = map[string]string{
	"bus":            "NaptanPublicBusCoachTram",
	"tube":           "NaptanMetroStation",
	"underground":    "NaptanMetroStation",
	"overground":     "NaptanRailStation",
	"elizabeth-line": "NaptanRailStation",
	"dlr":            "NaptanMetroStation",
	"national-rail":  "NaptanRailStation",
	"tram":           "NaptanPublicBusCoachTram",
	"river-bus":      "NaptanFerryPort",
	"cable-car":      "NaptanCableCarStation",
}

// ExpectedStopType returns the stop type stations of a mode must have, or ""
// for modes with no station topology.
func ExpectedStopType(modeName string) string {
	return modeStopTypes[modeName]
}
