package topology

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/model"
)

const earthRadiusKm = 6371

// SearchStations finds stations by search key. Keys follow the generated set:
// mode, lineId, mode_lineId, lineId_direction or mode_lineId_direction.
func (e *Engine) SearchStations(ctx context.Context, searchKey string) ([]model.Station, error) {
	stations, err := e.Store.GetAllByArrayContains(ctx, "searchkeys", searchKey)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("searchkey", searchKey).Int("results", len(stations)).Msg("Station search")

	return stations, nil
}

// SearchByLocation returns stations within radiusKm of a point.
func (e *Engine) SearchByLocation(ctx context.Context, lat float64, lon float64, radiusKm float64) ([]model.Station, error) {
	stations, err := e.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var nearby []model.Station
	for _, station := range stations {
		if distanceKm(lat, lon, station.Lat, station.Lon) <= radiusKm {
			nearby = append(nearby, station)
		}
	}

	return nearby, nil
}

// distanceKm is the haversine great-circle distance.
func distanceKm(lat1 float64, lon1 float64, lat2 float64, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
