// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package runtime

import "strings"

// primitiveTokens rewrites IL2CPP's fully-qualified BCL names for
// primitive types to their C# keyword form, matching the pseudo-source
// emitter's expected output (spec.md §6, supplemented from
// original_source's dumper.rs primitive table). Applied in this order as
// substring replacements, not a whole-string lookup, so the BCL spelling
// embedded in a composite name (an array "System.Int32[]", a generic
// `` List`1<System.Int32> ``) is rewritten too; the trailing '&' entry
// strips the by-ref marker il2cpp_type_get_name appends for ref/out/in
// parameter types — the ref-ness itself is reported separately by
// il2cpp_type_is_byref and rendered by the caller as a ref/in/out keyword.
var primitiveTokens = []struct{ From, To string }{
	{"System.Void", "void"},
	{"System.Boolean", "bool"},
	{"System.Char", "char"},
	{"System.SByte", "sbyte"},
	{"System.Byte", "byte"},
	{"System.Int16", "short"},
	{"System.UInt16", "ushort"},
	{"System.Int32", "int"},
	{"System.UInt32", "uint"},
	{"System.Int64", "long"},
	{"System.UInt64", "ulong"},
	{"System.Single", "float"},
	{"System.Double", "double"},
	{"System.String", "string"},
	{"System.IntPtr", "IntPtr"},
	{"System.UIntPtr", "UIntPtr"},
	{"System.Object", "object"},
	{"&", ""},
}

func rewriteTypeName(name string) string {
	for _, tok := range primitiveTokens {
		name = strings.ReplaceAll(name, tok.From, tok.To)
	}
	return name
}
