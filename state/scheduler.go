package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Env can be read from any goroutine. Functions dispatched through it run one at a time on the
// goroutine that owns S.
type Env[S any] struct {
	DispatchChannel chan<- func(S) error
	Context         context.Context
	Cancel          context.CancelCauseFunc
	Log             *slog.Logger
}

// Dispatch Dispatches the function to run on the main thread without waiting for it to complete
func (e *Env[S]) Dispatch(fun func(S) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

// DispatchWait Dispatches the function to run on the main thread and wait for it to complete
func (e *Env[S]) DispatchWait(fun func(S) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	select {
	case e.DispatchChannel <- func(s S) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return err
	}:
	case <-e.Context.Done():
		return nil, context.Cause(e.Context)
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, context.Cause(e.Context)
	}
}

func (e *Env[S]) ScheduleTask(fun func(S) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if e.Context.Err() == nil {
			e.Dispatch(fun)
		}
	})
}

func (e *Env[S]) repeatedTask(fun func(S) error, delay time.Duration) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for e.Context.Err() == nil {
		e.Dispatch(fun)
		select {
		case <-ticker.C:
		case <-e.Context.Done():
		}
	}
}

func (e *Env[S]) RepeatTask(fun func(S) error, delay time.Duration) {
	go e.repeatedTask(fun, delay)
}
