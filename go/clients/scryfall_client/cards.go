package scryfall_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Card is the subset of card metadata the league cares about.
type Card struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ManaCost      string   `json:"mana_cost"`
	CMC           float64  `json:"cmc"`
	ColorIdentity []string `json:"color_identity"`
	Rarity        string   `json:"rarity"`
}

// GetCardByName resolves a single card by exact name.
func (c *ScryfallClient) GetCardByName(ctx context.Context, name string) (*Card, error) {
	endpoint := fmt.Sprintf("%s?exact=%s", NamedCardEndpoint, url.QueryEscape(name))
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card %q: %w", name, err)
	}

	var card Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("failed to parse card %q: %w", name, err)
	}

	return &card, nil
}

type collectionRequest struct {
	Identifiers []cardIdentifier `json:"identifiers"`
}

type cardIdentifier struct {
	Name string `json:"name"`
}

type collectionResponse struct {
	Data     []Card           `json:"data"`
	NotFound []cardIdentifier `json:"not_found"`
}

// GetCardsByName resolves up to MaxCollectionBatch cards in one call.
// Returns the resolved cards plus the names the provider could not find.
func (c *ScryfallClient) GetCardsByName(ctx context.Context, names []string) ([]Card, []string, error) {
	if len(names) > MaxCollectionBatch {
		return nil, nil, fmt.Errorf("collection lookup limited to %d names, got %d", MaxCollectionBatch, len(names))
	}

	req := collectionRequest{Identifiers: make([]cardIdentifier, len(names))}
	for i, name := range names {
		req.Identifiers[i] = cardIdentifier{Name: name}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal collection request: %w", err)
	}

	body, err := c.Post(ctx, CollectionEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch card collection: %w", err)
	}

	var resp collectionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to parse collection response: %w", err)
	}

	missing := make([]string, len(resp.NotFound))
	for i, ident := range resp.NotFound {
		missing[i] = ident.Name
	}

	return resp.Data, missing, nil
}
