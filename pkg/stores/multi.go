package stores

import (
	"context"
	"errors"

	"github.com/openfroyo/inventory/pkg/engine"
)

// MultiSink reports every result to each of its sinks in order.
// All sinks are called even when one fails; the failures are joined.
type MultiSink []engine.Sink

// Report implements engine.Sink.
func (m MultiSink) Report(ctx context.Context, result *engine.TypeResult) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Report(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
