package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/model"
)

const StationsIndexName = "stationly-stations"

// StationIndexer mirrors stations into Elasticsearch for fuzzy name search.
// Documents are keyed by NaPTAN id, so re-indexing a changed station replaces
// its previous document.
type StationIndexer struct {
}

var GlobalIndexer = &StationIndexer{}

func (i *StationIndexer) IndexStations(ctx context.Context, stations []model.Station) error {
	if Client == nil {
		return nil
	}

	for _, station := range stations {
		jsonBytes, err := json.Marshal(station)
		if err != nil {
			return err
		}

		IndexRequest(StationsIndexName, station.NaptanID, bytes.NewReader(jsonBytes))
	}

	log.Debug().Int("length", len(stations)).Msg("Queued stations for indexing")

	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source model.Station `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchByName finds stations whose common name matches the query, with
// fuzziness so minor misspellings still hit.
func SearchByName(ctx context.Context, name string, size int) ([]model.Station, error) {
	if Client == nil {
		return nil, fmt.Errorf("elasticsearch is not configured")
	}
	if size <= 0 {
		size = 10
	}

	query := map[string]any{
		"size": size,
		"query": map[string]any{
			"match": map[string]any{
				"commonName": map[string]any{
					"query":     name,
					"fuzziness": "AUTO",
				},
			},
		},
	}

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := Client.Search(
		Client.Search.WithContext(ctx),
		Client.Search.WithIndex(StationsIndexName),
		Client.Search.WithBody(bytes.NewReader(queryBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("station search failed with status %s", res.Status())
	}

	var response searchResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, err
	}

	stations := make([]model.Station, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		stations = append(stations, hit.Source)
	}

	return stations, nil
}
