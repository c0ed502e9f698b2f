package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/openfroyo/inventory/pkg/engine"
)

// timestampLayout matches the start and stop lines of a run.
const timestampLayout = "2006-01-02 15:04:05.000000"

// printer is an engine.Sink writing one line per type outcome:
//
//	AWS::S3::Bucket: 12
//	// AWS::EC2::LaunchTemplate: skipped
//
// In JSON mode it writes nothing per type; the run is printed at the end.
type printer struct {
	mu   sync.Mutex
	out  io.Writer
	json bool
}

func newPrinter(out io.Writer, jsonMode bool) *printer {
	return &printer{out: out, json: jsonMode}
}

// Report implements engine.Sink.
func (p *printer) Report(_ context.Context, result *engine.TypeResult) error {
	if p.json {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch result.Status {
	case engine.TypeStatusEnumerated:
		fmt.Fprintf(p.out, "%s: %d\n", result.Type, result.Count())
	case engine.TypeStatusDisabled:
		fmt.Fprintf(p.out, "// %s: disabled\n", result.Type)
	case engine.TypeStatusSkipped:
		fmt.Fprintf(p.out, "// %s: skipped\n", result.Type)
	case engine.TypeStatusFailed:
		fmt.Fprintf(p.out, "// %s: failed: %v\n", result.Type, result.Err)
	}
	return nil
}

// line writes a free-form line in text mode.
func (p *printer) line(format string, args ...any) {
	if p.json {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// document writes v as indented JSON in JSON mode.
func (p *printer) document(v any) error {
	if !p.json {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
