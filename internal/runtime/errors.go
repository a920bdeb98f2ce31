// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

import "fmt"

// FunctionNotFoundError is returned when a facade method is called whose
// backing slot was absent from the bound function table (spec.md §7).
type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("runtime: function not bound: %s", e.Name)
}

// ReturnedNullError is returned when a non-optional IL2CPP call yields a
// null handle where the walker or emitter requires one to continue.
type ReturnedNullError struct {
	Name string
}

func (e *ReturnedNullError) Error() string {
	return fmt.Sprintf("runtime: %s returned null", e.Name)
}

// Utf8Error is returned when a C string read from the target process is not
// valid UTF-8.
type Utf8Error struct {
	Name string
}

func (e *Utf8Error) Error() string {
	return fmt.Sprintf("runtime: %s: invalid utf-8", e.Name)
}
