// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"sync"
	"sync/atomic"
)

// throttle limits the number of in-flight workers and remembers the
// first reported error.
type throttle struct {
	ch        chan bool
	wg        sync.WaitGroup
	err       atomic.Value
	errorOnce sync.Once
}

func newThrottle(max int) *throttle {
	return &throttle{ch: make(chan bool, max)}
}

func (t *throttle) Acquire() {
	t.wg.Add(1)
	t.ch <- true
}

func (t *throttle) Release() {
	t.wg.Done()
	<-t.ch
}

func (t *throttle) Report(err error) {
	if err != nil {
		t.errorOnce.Do(func() { t.err.Store(err) })
	}
}

func (t *throttle) Err() error {
	err, _ := t.err.Load().(error)
	return err
}

func (t *throttle) Wait() error {
	t.wg.Wait()
	return t.Err()
}
