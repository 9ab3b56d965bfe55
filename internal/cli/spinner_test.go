package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/sersmask/pkg/observability"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietSpinner(ctx context.Context, message string) (*Spinner, *syncBuffer) {
	out := &syncBuffer{}
	s := newSpinnerWithContext(ctx, message)
	s.out = out
	return s, out
}

func TestSpinnerDrawsMessage(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Building chip...")
	s.Start()
	time.Sleep(4 * spinnerInterval)
	s.Stop()

	if !strings.Contains(out.String(), "Building chip...") {
		t.Errorf("spinner output %q should contain the message", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s, out := quietSpinner(context.Background(), "Planning...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Rendering gds...")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Planning...", "Rendering gds..."} {
		if !strings.Contains(got, want) {
			t.Errorf("spinner output missing %q", want)
		}
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func() (context.Context, context.CancelFunc)
		cancel bool
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }, true},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), spinnerInterval/2)
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s, _ := quietSpinner(ctx, "Waiting...")
			s.Start()
			if tt.cancel {
				cancel()
			}
			time.Sleep(2 * spinnerInterval)

			if !s.Cancelled() {
				t.Error("spinner should report cancellation of its parent context")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithError("Build failed")
}

func TestNarrateFollowsPipelineStages(t *testing.T) {
	t.Cleanup(observability.Reset)

	s, _ := quietSpinner(context.Background(), "Building...")
	restore := narrate(s)
	ctx := context.Background()

	observability.Pipeline().OnPlanStart(ctx, 3)
	if s.message != "Planning 3 waveguides..." {
		t.Errorf("message = %q after plan start", s.message)
	}
	observability.Pipeline().OnRenderStart(ctx, []string{"gds", "svg"})
	if s.message != "Rendering gds, svg..." {
		t.Errorf("message = %q after render start", s.message)
	}

	restore()
	observability.Pipeline().OnPlaceStart(ctx, 3)
	if s.message != "Rendering gds, svg..." {
		t.Errorf("restored hooks should not reach the spinner, message = %q", s.message)
	}
}
