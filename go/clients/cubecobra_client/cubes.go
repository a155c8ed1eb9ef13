package cubecobra_client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CubeCard is a single card entry in a cube export.
type CubeCard struct {
	CardID string  `json:"cardID"`
	Name   string  `json:"name"`
	CMC    float64 `json:"cmc"`
	Elo    int     `json:"elo"`
}

type cubeJSON struct {
	Cards []CubeCard `json:"cards"`
}

// GetCubeList fetches the plain card-name list for a cube.
func (c *CubeCobraClient) GetCubeList(ctx context.Context, cubeID string) ([]string, error) {
	body, err := c.Get(ctx, fmt.Sprintf("%s/%s", CubeListEndpoint, cubeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cube list %q: %w", cubeID, err)
	}

	var names []string
	for _, line := range strings.Split(string(body), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetCubeCards fetches the full cube export including per-card elo.
func (c *CubeCobraClient) GetCubeCards(ctx context.Context, cubeID string) ([]CubeCard, error) {
	body, err := c.Get(ctx, fmt.Sprintf("%s/%s", CubeJSONEndpoint, cubeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cube %q: %w", cubeID, err)
	}

	var cube cubeJSON
	if err := json.Unmarshal(body, &cube); err != nil {
		return nil, fmt.Errorf("failed to parse cube %q: %w", cubeID, err)
	}

	return cube.Cards, nil
}
