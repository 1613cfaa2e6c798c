// Package streamio supplies the output-sink fan-out: a writer trait plus
// an implementation that multiplexes one write to many observers. The
// observer list is only mutated outside of a Write call; Register and
// Deregister reject reentrant use.
package streamio

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrDuringWrite is returned by Register/Deregister if called while a
// Write is in progress.
var ErrDuringWrite = errors.New("streamio: cannot mutate observers during a write")

// FanOut multiplexes Write calls to every registered observer.
type FanOut struct {
	mu        sync.Mutex
	observers []io.Writer
	writing   bool
}

// New returns an empty fan-out.
func New() *FanOut { return &FanOut{} }

// Register adds an observer. Fails if called from inside Write.
func (f *FanOut) Register(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writing {
		return ErrDuringWrite
	}
	f.observers = append(f.observers, w)
	return nil
}

// Deregister removes an observer (by identity). Fails if called from
// inside Write.
func (f *FanOut) Deregister(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writing {
		return ErrDuringWrite
	}
	for i, o := range f.observers {
		if o == w {
			f.observers = append(f.observers[:i], f.observers[i+1:]...)
			return nil
		}
	}
	return nil
}

// Write sends p to every observer, returning the first error encountered
// (if any) after attempting all of them.
func (f *FanOut) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.writing = true
	observers := append([]io.Writer(nil), f.observers...)
	f.mu.Unlock()

	var firstErr error
	for _, o := range observers {
		if _, err := o.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	f.mu.Lock()
	f.writing = false
	f.mu.Unlock()

	return len(p), firstErr
}
