// Package generator provides the default generation backend. Real backends
// live outside this core; the echo implementation keeps the pipeline
// runnable without one.
package generator

import (
	"context"
	"encoding/json"
	"time"

	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Generator = (*Echo)(nil)

// Echo is a stand-in backend that wraps the aggregated context back into a
// stub output document.
type Echo struct{}

// NewEcho creates the stand-in backend.
func NewEcho() *Echo {
	return &Echo{}
}

// Generate implements ports.Generator.
func (e *Echo) Generate(_ context.Context, resourceID string, aggregated []byte) ([]byte, error) {
	out, err := json.Marshal(map[string]any{
		"resourceId":  resourceID,
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"context":     string(aggregated),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode stub output")
	}
	return out, nil
}
