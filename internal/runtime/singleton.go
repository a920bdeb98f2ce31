// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

import (
	"sync"

	"github.com/saferwall/il2cppdump/internal/abi"
)

var (
	instance     *Facade
	instanceOnce sync.Once
	instanceErr  error
)

// Init binds the process-wide Facade instance from table. It is safe to
// call more than once; only the first call's table takes effect, matching
// Bootstrap's single-shot initialization (spec.md §4.7) — there is exactly
// one runtime module per injected process.
func Init(table *abi.Table) error {
	instanceOnce.Do(func() {
		instance, instanceErr = NewFacade(table)
	})
	return instanceErr
}

// Get returns the process-wide Facade instance bound by Init. It panics if
// called before Init succeeds, since every caller in this module's call
// graph runs after Bootstrap's initialization step.
func Get() *Facade {
	if instance == nil {
		panic("runtime: Get called before successful Init")
	}
	return instance
}
