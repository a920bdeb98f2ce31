// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package clrflags holds the ECMA-335 attribute bit masks spec.md §6
// fixes: type visibility/modifiers, field and method access/storage, and
// parameter direction. Used by the Pseudo-Source Emitter's token tables,
// kept as a single constant block the way the teacher repo's
// ntheader.go/section.go keep their Characteristics bit masks.
package clrflags

// Type attributes (ECMA-335 II.23.1.15).
const (
	TypeVisibilityMask    = 0x7
	TypeNotPublic         = 0x0
	TypePublic            = 0x1
	TypeNestedPublic      = 0x2
	TypeNestedPrivate     = 0x3
	TypeNestedFamily      = 0x4
	TypeNestedAssembly    = 0x5
	TypeNestedFamAndAssem = 0x6
	TypeNestedFamOrAssem  = 0x7

	TypeSerializable = 0x2000
	TypeAbstract     = 0x80
	TypeSealed       = 0x100
	TypeInterface    = 0x20
)

// Field attributes (ECMA-335 II.23.1.5).
const (
	FieldAccessMask  = 0x7
	FieldPrivate     = 0x1
	FieldAssembly    = 0x3
	FieldFamAndAssem = 0x4
	FieldFamily      = 0x5
	FieldFamOrAssem  = 0x6
	FieldPublic      = 0x7

	FieldStatic   = 0x10
	FieldInitOnly = 0x20
	FieldLiteral  = 0x40
)

// Method attributes (ECMA-335 II.23.1.10).
const (
	MethodAccessMask  = 0x7
	MethodPrivate     = 0x1
	MethodAssem       = 0x3
	MethodFamAndAssem = 0x4
	MethodFamily      = 0x5
	MethodFamOrAssem  = 0x6
	MethodPublic      = 0x7

	MethodStatic           = 0x10
	MethodFinal            = 0x20
	MethodVirtual          = 0x40
	MethodAbstract         = 0x400
	MethodPInvokeImpl      = 0x2000
	MethodVTableLayoutMask = 0x100
	MethodNewSlot          = 0x100
	MethodReuseSlot        = 0x0
)

// Parameter attributes (ECMA-335 II.23.1.13).
const (
	ParamIn  = 0x1
	ParamOut = 0x2
)
