// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

// Handle types model the opaque IL2CPP pointers the facade passes between
// calls. They are all raw addresses in the target process; Go never
// dereferences their payload except through the facade's own accessors.
type (
	DomainHandle   uintptr
	AssemblyHandle uintptr
	ImageHandle    uintptr
	ClassHandle    uintptr
	TypeHandle     uintptr
	FieldHandle    uintptr
	MethodHandle   uintptr
)
