// Package classifier wraps the external doodle classifier behind a
// readiness-gated asynchronous client.
package classifier

import (
	"context"
	"encoding/json"
	"image"
)

type Prediction struct {
	Label      string  `json:"label" jsonschema_description:"Category name, lowercase, words joined with underscores"`
	Confidence float64 `json:"confidence" jsonschema_description:"Probability between 0 and 1"`
}

// Reply is a backend answer in its raw two-slot shape. Results normally
// arrive in Results, but some classifier builds put the ranked list in the
// Error slot; callers must not assume a non-empty Error is a failure.
type Reply struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`
}

// Delivery is handed back exactly once per accepted request.
type Delivery struct {
	Seq   uint64
	Reply Reply
	Err   error
}

// Input is captured when the request is made; later strokes do not change it.
type Input struct {
	Image      *image.RGBA
	Normalized *image.Gray
}

type Backend interface {
	Name() string
	// Load blocks until the model can serve requests or returns why not.
	Load(ctx context.Context) error
	Classify(ctx context.Context, in Input) (Reply, error)
}
