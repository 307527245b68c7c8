package explorer

import (
	"fmt"
	"runtime"
	"sync"
)

type job struct {
	fn     func() error
	result chan error
}

// Apartment runs automation calls on a single locked OS thread. Jobs execute
// one at a time in submission order.
type Apartment struct {
	jobs      chan job
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewApartment starts the apartment worker
func NewApartment() *Apartment {
	a := &Apartment{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

func (a *Apartment) loop() {
	defer a.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case j := <-a.jobs:
			j.result <- a.run(j.fn)
		case <-a.done:
			return
		}
	}
}

func (a *Apartment) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindApartment, "automation call panicked", fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

// Do runs fn on the apartment thread and waits for it to finish
func (a *Apartment) Do(fn func() error) error {
	result := make(chan error, 1)
	select {
	case <-a.done:
		return newError(KindApartment, "automation apartment is closed", nil)
	case a.jobs <- job{fn: fn, result: result}:
	}
	return <-result
}

// Close stops the worker after any running job completes. Safe to call more than once.
func (a *Apartment) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
	a.wg.Wait()
}
