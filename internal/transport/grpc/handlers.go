package grpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

var _ CatalogServer = (*catalogHandler)(nil)

type catalogHandler struct {
	catalog *service.Services
}

func (h *catalogHandler) ListVersions(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return reply(h.catalog.Versions.ListVersions(ctx), toList)
}

func (h *catalogHandler) GetVersion(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	return reply(h.catalog.Versions.GetVersion(ctx, in.GetValue()), toStruct)
}

func (h *catalogHandler) ListStyles(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return reply(h.catalog.Styles.ListStyles(ctx), toList)
}

func (h *catalogHandler) GetStyle(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	return reply(h.catalog.Styles.GetStyle(ctx, in.GetValue()), toStruct)
}

func (h *catalogHandler) ListProperties(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	return reply(h.catalog.Properties.ListProperties(ctx, in.GetValue()), toList)
}

// reply converts a successful result to its message, or a failed one to a
// status error.
func reply[T any, M any](r result.Result[T], convert func(any) (M, error)) (M, error) {
	if r.IsFailed() {
		var zero M
		return zero, statusFromErrors(r.Errors())
	}
	m, err := convert(r.Value())
	if err != nil {
		return m, status.Error(codes.Internal, "encoding response: "+err.Error())
	}
	return m, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	var fields map[string]any
	if err := roundTrip(v, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func toList(v any) (*structpb.ListValue, error) {
	var items []any
	if err := roundTrip(v, &items); err != nil {
		return nil, err
	}
	return structpb.NewList(items)
}

// roundTrip re-decodes v through its JSON form so structpb sees only
// JSON-native values.
func roundTrip(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// statusFromErrors picks the main error by status priority and lists every
// message in the status text.
func statusFromErrors(errs []result.Error) error {
	main := result.SelectMain(errs)
	if len(errs) == 0 {
		errs = []result.Error{main}
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}
	return status.Error(codeFor(main.StatusCode()), strings.Join(messages, "; "))
}

func codeFor(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	}
	switch {
	case httpStatus >= 400 && httpStatus < 500:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
