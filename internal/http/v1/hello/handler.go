package hello

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/football-api/internal/platform/logging"
)

const (
	// Prefix is the path the hello router is mounted under.
	Prefix = "/hello"
	// Tag groups hello operations in the API documentation.
	Tag = "hello"
	// NotFoundDescription documents the 404 response of every hello operation.
	NotFoundDescription = "Not Found"

	// Message is the fixed greeting returned by GET /hello/world.
	Message = "Hello World"
)

// Register wires the hello router into the provided API.
func Register(api huma.API) {
	grp := huma.NewGroup(api, Prefix)
	grp.UseSimpleModifier(describeOperation)

	huma.Register(grp, huma.Operation{
		OperationID: "get-world",
		Method:      http.MethodGet,
		Path:        "/world",
		Summary:     "Greet the world",
	}, worldHandler)
}

// describeOperation namespaces the operation ID with the router's tag and
// attaches the tag and 404 description to each operation in the group.
func describeOperation(op *huma.Operation) {
	if op.OperationID != "" && !strings.HasPrefix(op.OperationID, Tag+"-") {
		op.OperationID = Tag + "-" + op.OperationID
	}
	if !slices.Contains(op.Tags, Tag) {
		op.Tags = append(op.Tags, Tag)
	}
	if op.Responses == nil {
		op.Responses = map[string]*huma.Response{}
	}
	if _, ok := op.Responses["404"]; !ok {
		op.Responses["404"] = &huma.Response{Description: NotFoundDescription}
	}
}

func worldHandler(ctx context.Context, _ *struct{}) (*WorldOutput, error) {
	applog.LogInfo(ctx, "hello world", zap.String("path", Prefix+"/world"))
	return &WorldOutput{Body: Greeting{Message: Message}}, nil
}
