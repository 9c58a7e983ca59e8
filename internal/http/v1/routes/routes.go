package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/football-api/internal/http/v1/hello"
)

const (
	// Prefix is the path the v1 sub-application is mounted under.
	Prefix = "/api/v1"
	// Title names the v1 API in its OpenAPI document.
	Title = "Football API"
)

// Config returns the huma configuration of the v1 sub-application. The server
// URL is the mount prefix so generated docs and links resolve from the root.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.Servers = []*huma.Server{{URL: Prefix}}
	// Response bodies carry only their payload: no $schema field, no describedBy link.
	cfg.CreateHooks = nil
	return cfg
}

// New builds the v1 sub-application on r and registers all v1 routers into it.
// r is expected to be mounted at Prefix by the caller.
func New(r chi.Router, version string) huma.API {
	api := humachi.New(r, Config(version))
	documentCBOR(api)
	Register(api)
	return api
}

// Register wires all v1 routers into the provided API.
func Register(api huma.API) {
	hello.Register(api)
}

// documentCBOR advertises application/cbor next to every JSON request and
// response body in the OpenAPI document.
func documentCBOR(api huma.API) {
	oapi := api.OpenAPI()
	oapi.OnAddOperation = append(oapi.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		if op.RequestBody != nil && op.RequestBody.Content != nil {
			if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
				op.RequestBody.Content["application/cbor"] = jsonContent
			}
		}
		for _, resp := range op.Responses {
			if resp.Content == nil {
				continue
			}
			if jsonContent, ok := resp.Content["application/json"]; ok {
				resp.Content["application/cbor"] = jsonContent
			}
		}
	})
}
