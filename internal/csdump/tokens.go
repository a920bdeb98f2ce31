// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package csdump

import (
	"strings"

	"github.com/saferwall/il2cppdump/internal/clrflags"
)

// classAccessToken renders the ECMA-335 type-visibility bits as the C#
// access keyword the pseudo-source emitter prints before "class"/"struct"/
// "interface"/"enum".
func classAccessToken(flags uint32) string {
	switch flags & clrflags.TypeVisibilityMask {
	case clrflags.TypePublic, clrflags.TypeNestedPublic:
		return "public"
	case clrflags.TypeNestedPrivate:
		return "private"
	case clrflags.TypeNestedFamily:
		return "protected"
	case clrflags.TypeNestedAssembly, clrflags.TypeNestedFamAndAssem:
		return "internal"
	case clrflags.TypeNestedFamOrAssem:
		return "protected internal"
	default:
		return "internal"
	}
}

// classKindToken picks "interface" / "enum" / "struct" / "class", in that
// priority, matching the original dumper's branching order.
func classKindToken(flags uint32, isValueType, isEnum bool) string {
	switch {
	case flags&clrflags.TypeInterface != 0:
		return "interface"
	case isEnum:
		return "enum"
	case isValueType:
		return "struct"
	default:
		return "class"
	}
}

// classModifierTokens returns the "static"/"abstract"/"sealed" modifier
// that appears between the access keyword and the kind keyword, per
// spec.md §4.6's exclusive precedence: a class that is both abstract and
// sealed (a C# static class) renders "static", never "abstract sealed";
// plain abstract never applies to an interface (already implicitly
// abstract); plain sealed never applies to a value type or enum (already
// implicitly sealed in C#).
func classModifierTokens(flags uint32, isValueType, isEnum bool) []string {
	isAbstract := flags&clrflags.TypeAbstract != 0
	isSealed := flags&clrflags.TypeSealed != 0
	isInterface := flags&clrflags.TypeInterface != 0

	switch {
	case isAbstract && isSealed:
		return []string{"static"}
	case isAbstract && !isInterface:
		return []string{"abstract"}
	case isSealed && !isValueType && !isEnum:
		return []string{"sealed"}
	default:
		return nil
	}
}

// fieldAccessToken renders a field's ECMA-335 access bits. FAM_AND_ASSEM
// renders "internal", not the C# keyword "private protected", matching the
// original dumper; CompilerControlled (and any other unmatched value)
// renders the empty token.
func fieldAccessToken(flags uint32) string {
	switch flags & clrflags.FieldAccessMask {
	case clrflags.FieldPrivate:
		return "private"
	case clrflags.FieldFamAndAssem:
		return "internal"
	case clrflags.FieldAssembly:
		return "internal"
	case clrflags.FieldFamily:
		return "protected"
	case clrflags.FieldFamOrAssem:
		return "protected internal"
	case clrflags.FieldPublic:
		return "public"
	default:
		return ""
	}
}

// fieldModifierTokens returns "static"/"const"/"readonly" modifiers.
func fieldModifierTokens(flags uint32) []string {
	var mods []string
	if flags&clrflags.FieldLiteral != 0 {
		mods = append(mods, "const")
	} else if flags&clrflags.FieldStatic != 0 {
		mods = append(mods, "static")
	}
	if flags&clrflags.FieldInitOnly != 0 {
		mods = append(mods, "readonly")
	}
	return mods
}

// methodAccessToken renders a method's ECMA-335 access bits, which share
// the field scheme (spec.md §6) and the same FAM_AND_ASSEM/default
// rendering as fieldAccessToken.
func methodAccessToken(flags uint32) string {
	switch flags & clrflags.MethodAccessMask {
	case clrflags.MethodPrivate:
		return "private"
	case clrflags.MethodFamAndAssem:
		return "internal"
	case clrflags.MethodAssem:
		return "internal"
	case clrflags.MethodFamily:
		return "protected"
	case clrflags.MethodFamOrAssem:
		return "protected internal"
	case clrflags.MethodPublic:
		return "public"
	default:
		return ""
	}
}

// methodModifierTokens returns "static"/"virtual"/"abstract"/"override"/
// "sealed" modifiers in C#-idiomatic order. A newslot virtual method is
// rendered "virtual"; a reuseslot virtual method (one that overrides a base
// virtual method) is rendered "override". An abstract method that also
// reuses its base's vtable slot overrides an inherited abstract declaration,
// so it renders "abstract override"; a final (sealed) method that reuses
// its slot renders "sealed override".
func methodModifierTokens(flags uint32) []string {
	var mods []string
	if flags&clrflags.MethodStatic != 0 {
		mods = append(mods, "static")
	}

	isAbstract := flags&clrflags.MethodAbstract != 0
	isFinal := flags&clrflags.MethodFinal != 0
	isVirtual := flags&clrflags.MethodVirtual != 0
	isReuseSlot := flags&clrflags.MethodVTableLayoutMask == clrflags.MethodReuseSlot
	isNewSlot := flags&clrflags.MethodVTableLayoutMask == clrflags.MethodNewSlot

	switch {
	case isAbstract && isReuseSlot:
		mods = append(mods, "abstract", "override")
	case isAbstract:
		mods = append(mods, "abstract")
	case isFinal && isReuseSlot:
		mods = append(mods, "sealed", "override")
	case isVirtual && isNewSlot:
		mods = append(mods, "virtual")
	case isVirtual:
		mods = append(mods, "override")
	}

	if flags&clrflags.MethodPInvokeImpl != 0 {
		mods = append(mods, "extern")
	}

	return mods
}

// paramDirectionToken renders the ref/in/out keyword a by-ref parameter
// gets, based on its ECMA-335 parameter attribute bits. A by-ref parameter
// with neither In nor Out set is a plain "ref".
func paramDirectionToken(attrs uint32) string {
	in := attrs&clrflags.ParamIn != 0
	out := attrs&clrflags.ParamOut != 0
	switch {
	case out && !in:
		return "out"
	case in && !out:
		return "in"
	default:
		return "ref"
	}
}

// paramAttributeTokens renders the "[In] "/"[Out] " custom-attribute
// spelling spec.md §4.6 requires for non-byref parameters, in declared
// order. A by-ref parameter never gets these; it gets paramDirectionToken
// instead.
func paramAttributeTokens(attrs uint32) string {
	var b strings.Builder
	if attrs&clrflags.ParamIn != 0 {
		b.WriteString("[In] ")
	}
	if attrs&clrflags.ParamOut != 0 {
		b.WriteString("[Out] ")
	}
	return b.String()
}
