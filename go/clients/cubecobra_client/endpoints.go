package cubecobra_client

const (
	// Base URL
	BaseURL = "https://cubecobra.com"

	// API Endpoints
	CubeListEndpoint = "/cube/api/cubelist" // plain-text card list per cube
	CubeJSONEndpoint = "/cube/api/cubeJSON" // full cube export with elo
)
