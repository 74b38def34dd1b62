package util

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Perror listens for errors reported from parallel worker goroutines and
// collapses them into a single *multierror.Error once the parallel job has
// finished. Used by the compiler package to fan out per-function stages
// (select-instructions through patch-instructions) across Options.Threads
// workers.
type Perror struct {
	listen chan error // Channel for receiving error messages from worker threads.
	stop   chan error // Messages sent on this channel cause Perror to stop listening.
	errs   *multierror.Error
	mx     sync.Mutex
}

// ---------------------
// ----- Constants -----
// ---------------------

const defaultBufferSize = 16

// ---------------------
// ----- functions -----
// ---------------------

// NewPerror returns a pointer to a Perror that immediately begins listening
// for errors on its own goroutine.
func NewPerror(n int) *Perror {
	if n < 1 {
		n = defaultBufferSize
	}
	pe := &Perror{
		listen: make(chan error),
		stop:   make(chan error),
	}
	go pe.run()
	return pe
}

// run listens for errors on the listen channel until a message is sent on stop.
func (pe *Perror) run() {
	defer close(pe.listen)
	for {
		select {
		case err := <-pe.listen:
			pe.mx.Lock()
			pe.errs = multierror.Append(pe.errs, err)
			pe.mx.Unlock()
		case <-pe.stop:
			return
		}
	}
}

// Append sends err to the error listener. <nil> errors are ignored.
func (pe *Perror) Append(err error) {
	if err != nil {
		pe.listen <- err
	}
}

// Len returns the number of buffered errors.
func (pe *Perror) Len() int {
	pe.mx.Lock()
	defer pe.mx.Unlock()
	if pe.errs == nil {
		return 0
	}
	return pe.errs.Len()
}

// Stop sends the stop signal to the error listener. Must only be called once.
func (pe *Perror) Stop() {
	defer close(pe.stop)
	pe.stop <- nil
}

// ErrorOrNil returns the aggregated *multierror.Error as an error, or <nil>
// if no errors were reported. Must be called after Stop.
func (pe *Perror) ErrorOrNil() error {
	pe.mx.Lock()
	defer pe.mx.Unlock()
	return pe.errs.ErrorOrNil()
}
