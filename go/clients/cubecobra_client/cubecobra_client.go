package cubecobra_client

import (
	"github.com/draftforge/cubeleague/go/clients"
)

type CubeCobraClient struct {
	*clients.BaseClient
}

func NewCubeCobraClient() *CubeCobraClient {
	return &CubeCobraClient{
		BaseClient: clients.NewBaseClient(BaseURL),
	}
}
