package scryfall_client

const (
	// Base URL
	BaseURL = "https://api.scryfall.com"

	// API Endpoints
	NamedCardEndpoint  = "/cards/named"
	CollectionEndpoint = "/cards/collection"

	// Scryfall asks bulk consumers to pace requests.
	RequestDelayMs = 100

	// Collection lookups accept at most 75 identifiers per call.
	MaxCollectionBatch = 75
)
