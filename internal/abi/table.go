// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package abi is the Function Table Binder (spec.md §4.2): it reads a
// fixed-offset array of code pointers inside the runtime module and exposes
// an immutable table of per-slot addresses, each either present or absent.
//
// Binding never calls GetProcAddress/dlsym/any OS exported-symbol lookup —
// slots are plain array indices at runtime_base+FUNCTION_TABLE_OFFSET, read
// with a direct memory dereference, exactly as spec.md §1 requires.
package abi

import (
	"unsafe"

	"github.com/saferwall/il2cppdump/config"
)

// pointerSize is the width of one function-table slot.
const pointerSize = unsafe.Sizeof(uintptr(0))

// Table is an immutable record of bound slot addresses. A slot holding the
// zero value means "entry absent" per spec.md's data model.
type Table struct {
	addrs map[config.Slot]uintptr
}

// Bind reads every slot named in config.FunctionNames out of the array at
// runtimeBase+offset and returns the resulting Table.
//
// runtimeBase is the base address of the mapped runtime module (e.g.
// UnityPlayer.dll); on the non-Windows fallback loader it is 0, so callers
// that only replay recorded fixtures never reach this function for a live
// bind — they build a Table directly (see WithAddrs) instead.
func Bind(runtimeBase uintptr, offset uintptr) *Table {
	base := runtimeBase + offset
	t := &Table{addrs: make(map[config.Slot]uintptr, len(config.FunctionNames))}

	for slot := range config.FunctionNames {
		entryAddr := base + uintptr(slot)*pointerSize
		entry := *(*uintptr)(unsafe.Pointer(entryAddr))
		t.addrs[slot] = entry
	}

	return t
}

// WithAddrs builds a Table directly from a slot->address map, bypassing the
// memory read in Bind. Used by tests to script a fake runtime without
// needing a real function-table image in memory.
func WithAddrs(addrs map[config.Slot]uintptr) *Table {
	t := &Table{addrs: make(map[config.Slot]uintptr, len(addrs))}
	for slot, addr := range addrs {
		t.addrs[slot] = addr
	}
	return t
}

// Lookup returns the bound address for slot and whether it is present
// (non-null). An absent entry is the "unbound" sum-type variant spec.md §9
// calls for.
func (t *Table) Lookup(slot config.Slot) (uintptr, bool) {
	addr, ok := t.addrs[slot]
	if !ok || addr == 0 {
		return 0, false
	}
	return addr, true
}
