package sfs

import (
	"context"
	"fmt"
	"net/url"
)

// InfoAPI wraps the read-only GET endpoints.
type InfoAPI struct {
	http *HTTPClient
}

func NewInfoAPI(h *HTTPClient) *InfoAPI {
	return &InfoAPI{http: h}
}

func (i *InfoAPI) object(ctx context.Context, path string, params url.Values) (Object, error) {
	res, err := i.http.GetJSON(ctx, path, params)
	if err != nil {
		return nil, err
	}
	obj, ok := res.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ErrUnexpectedPayload, path, res)
	}
	return obj, nil
}

// list accepts a bare array, an object with the array under key, or any other
// payload, which is wrapped as a one-element list. Elements are kept as decoded.
func (i *InfoAPI) list(ctx context.Context, path, key string) ([]any, error) {
	res, err := i.http.GetJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	switch v := res.(type) {
	case []any:
		return v, nil
	case Object:
		if inner, ok := v[key].([]any); ok {
			return inner, nil
		}
	}
	return []any{res}, nil
}

// RocketSim returns GET /rocket_sim: live simulation state of a rocket.
func (i *InfoAPI) RocketSim(ctx context.Context, rocket Ref) (Object, error) {
	return i.object(ctx, "/rocket_sim", rocket.query())
}

// RocketSave returns GET /rocket: the saved form of a rocket, including location.
func (i *InfoAPI) RocketSave(ctx context.Context, rocket Ref) (Object, error) {
	return i.object(ctx, "/rocket", rocket.query())
}

// Rockets returns GET /rockets.
func (i *InfoAPI) Rockets(ctx context.Context) ([]any, error) {
	return i.list(ctx, "/rockets", "rockets")
}

// Planet returns GET /planet. An empty codename asks for the current planet.
func (i *InfoAPI) Planet(ctx context.Context, codename string) (Object, error) {
	var params url.Values
	if codename != "" {
		params = url.Values{"codename": {codename}}
	}
	return i.object(ctx, "/planet", params)
}

// Planets returns GET /planets.
func (i *InfoAPI) Planets(ctx context.Context) ([]any, error) {
	return i.list(ctx, "/planets", "planets")
}

// Other returns GET /other: timewarp, target, quicksaves and derived flight values.
func (i *InfoAPI) Other(ctx context.Context, rocket Ref) (Object, error) {
	return i.object(ctx, "/other", rocket.query())
}

// Mission returns GET /mission as decoded.
func (i *InfoAPI) Mission(ctx context.Context) (any, error) {
	return i.http.GetJSON(ctx, "/mission", nil)
}

// DebugLog returns GET /debuglog as decoded. Servers may answer with an object or a plain string.
func (i *InfoAPI) DebugLog(ctx context.Context) (any, error) {
	return i.http.GetJSON(ctx, "/debuglog", nil)
}

func (i *InfoAPI) Version(ctx context.Context) (Object, error) {
	return i.object(ctx, "/version", nil)
}

// PartsInfo returns the "parts" field of /rocket_sim, or an empty object when absent.
func (i *InfoAPI) PartsInfo(ctx context.Context, rocket Ref) (any, error) {
	sim, err := i.RocketSim(ctx, rocket)
	if err != nil {
		return nil, err
	}
	parts, ok := sim["parts"]
	if !ok {
		return Object{}, nil
	}
	return parts, nil
}

// PartsList returns the parts of a rocket when the server lists them, else an empty list.
func (i *InfoAPI) PartsList(ctx context.Context, rocket Ref) ([]any, error) {
	parts, err := i.PartsInfo(ctx, rocket)
	if err != nil {
		return nil, err
	}
	items, ok := parts.([]any)
	if !ok {
		return []any{}, nil
	}
	return items, nil
}
