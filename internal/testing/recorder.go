package testing

import (
	"fmt"
	"sync"
)

// Recorder keeps an ordered log of operations across several mocks.
type Recorder struct {
	mu  sync.Mutex
	ops []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one formatted operation. A nil recorder ignores the call.
func (r *Recorder) Record(format string, args ...interface{}) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

// Ops returns a copy of the log.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	copy(out, r.ops)
	return out
}
