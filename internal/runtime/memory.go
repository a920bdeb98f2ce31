// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

import (
	"unicode/utf8"
	"unsafe"
)

// readCString decodes a NUL-terminated UTF-8 string starting at ptr. A null
// ptr decodes to "", matching the empty-namespace case spec.md §4.6 calls
// out explicitly rather than treating it as an error.
//
// This reads byte-by-byte through unsafe.Pointer instead of relying on any
// library's char*-to-string marshaling, since the pointers involved are
// owned by the target process's heap, not by Go's.
func readCString(ptr uintptr) (string, error) {
	if ptr == 0 {
		return "", nil
	}

	const maxLen = 1 << 20 // guards against a corrupt, unterminated pointer
	var buf []byte
	for i := 0; i < maxLen; i++ {
		b := *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}

	if !utf8.Valid(buf) {
		return "", &Utf8Error{Name: "readCString"}
	}
	return string(buf), nil
}

// readPointerArray reads a contiguous array of size machine words starting
// at arr, as returned by il2cpp_domain_get_assemblies, and returns it typed
// as T (one of the uintptr-based handle types).
func readPointerArray[T ~uintptr](arr uintptr, size uintptr) []T {
	out := make([]T, size)
	for i := uintptr(0); i < size; i++ {
		word := *(*uintptr)(unsafe.Pointer(arr + i*unsafe.Sizeof(uintptr(0))))
		out[i] = T(word)
	}
	return out
}
