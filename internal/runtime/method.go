// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

import (
	"unsafe"

	"github.com/saferwall/il2cppdump/config"
)

// CodePointer reads the native entry point directly out of a MethodInfo
// structure at cfg.MethodRecord.CodePointerOffset, bypassing the function
// table entirely — spec.md §4.5 requires this field come from a raw struct
// read, not a thunk call, since IL2CPP exposes no accessor for it.
func CodePointer(method MethodHandle, rec config.MethodRecord) uintptr {
	return *(*uintptr)(unsafe.Pointer(uintptr(method) + rec.CodePointerOffset))
}

// MethodFlags reads the method's 16-bit flags word directly, the same way
// CodePointer does (spec.md §3: "a 16-bit flags field at a second fixed
// offset"), widened to uint32 so callers can mask it against the
// clrflags.Method* bit constants without a cast at every call site.
func MethodFlags(method MethodHandle, rec config.MethodRecord) uint32 {
	return uint32(*(*uint16)(unsafe.Pointer(uintptr(method) + rec.FlagsOffset)))
}
