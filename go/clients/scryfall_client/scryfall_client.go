package scryfall_client

import (
	"github.com/draftforge/cubeleague/go/clients"
)

type ScryfallClient struct {
	*clients.BaseClient
}

func NewScryfallClient() *ScryfallClient {
	client := &ScryfallClient{
		BaseClient: clients.NewBaseClient(BaseURL),
	}

	client.SetHeader("Accept", "application/json")

	return client
}
