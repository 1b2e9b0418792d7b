package draft

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period an AutoSaver waits for after the
// last scheduled edit before pushing the draft.
const DefaultAutoSaveDelay = 700 * time.Millisecond

// AutoSaver schedules a debounced background save after drag operations: a
// coalesced timer fires once the draft has been quiet for the configured
// delay, and every new edit supersedes the pending timer. This is a
// convenience policy on top of [Engine.Save], not a correctness requirement;
// explicit saves work the same with or without it.
type AutoSaver struct {
	mu      sync.Mutex
	engine  *Engine
	saver   Saver
	opts    SaveOptions
	delay   time.Duration
	timer   *time.Timer
	onError func(error)
	stopped bool
}

// NewAutoSaver wires an engine to a saver. A zero delay means
// [DefaultAutoSaveDelay]. onError, when non-nil, receives save failures;
// the draft itself is untouched by a failed background save.
func NewAutoSaver(engine *Engine, saver Saver, delay time.Duration, onError func(error)) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{engine: engine, saver: saver, delay: delay, onError: onError}
}

// Schedule (re)arms the debounce timer. Call it after every edit that should
// eventually be persisted; only the last call within a quiet period wins.
func (a *AutoSaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoSaver) fire() {
	if !a.engine.Dirty() {
		return
	}
	if err := a.engine.Save(context.Background(), a.saver, a.opts); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// Stop cancels any pending save. The AutoSaver cannot be reused afterwards.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
