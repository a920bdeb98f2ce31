package csdump

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saferwall/il2cppdump/internal/clrflags"
)

func TestClassAccessToken(t *testing.T) {
	assert.Equal(t, "public", classAccessToken(clrflags.TypePublic))
	assert.Equal(t, "internal", classAccessToken(clrflags.TypeNestedAssembly))
	assert.Equal(t, "internal", classAccessToken(clrflags.TypeNestedFamAndAssem))
	assert.Equal(t, "internal", classAccessToken(clrflags.TypeNotPublic))
	assert.Equal(t, "private", classAccessToken(clrflags.TypeNestedPrivate))
}

func TestClassKindToken(t *testing.T) {
	assert.Equal(t, "enum", classKindToken(0, true, true))
	assert.Equal(t, "interface", classKindToken(clrflags.TypeInterface, false, false))
	assert.Equal(t, "struct", classKindToken(0, true, false))
	assert.Equal(t, "class", classKindToken(0, false, false))
}

func TestClassModifierTokens(t *testing.T) {
	// ABSTRACT|SEALED is a C# static class (spec.md S4), never "abstract sealed".
	assert.Equal(t, []string{"static"}, classModifierTokens(clrflags.TypeAbstract|clrflags.TypeSealed, false, false))

	assert.Equal(t, []string{"abstract"}, classModifierTokens(clrflags.TypeAbstract, false, false))
	// Interfaces are implicitly abstract; no redundant "abstract" token.
	assert.Nil(t, classModifierTokens(clrflags.TypeAbstract|clrflags.TypeInterface, false, false))

	assert.Equal(t, []string{"sealed"}, classModifierTokens(clrflags.TypeSealed, false, false))
	// Value types and enums are implicitly sealed; no redundant "sealed" token.
	assert.Nil(t, classModifierTokens(clrflags.TypeSealed, true, false))
	assert.Nil(t, classModifierTokens(clrflags.TypeSealed, false, true))
}

func TestFieldAccessToken(t *testing.T) {
	assert.Equal(t, "public", fieldAccessToken(clrflags.FieldPublic))
	assert.Equal(t, "private", fieldAccessToken(clrflags.FieldPrivate))
	assert.Equal(t, "protected", fieldAccessToken(clrflags.FieldFamily))
	assert.Equal(t, "protected internal", fieldAccessToken(clrflags.FieldFamOrAssem))
	assert.Equal(t, "internal", fieldAccessToken(clrflags.FieldFamAndAssem))
	assert.Equal(t, "internal", fieldAccessToken(clrflags.FieldAssembly))
	assert.Equal(t, "", fieldAccessToken(0))
}

func TestFieldModifierTokens(t *testing.T) {
	assert.Equal(t, []string{"const"}, fieldModifierTokens(clrflags.FieldLiteral|clrflags.FieldStatic))
	assert.Equal(t, []string{"static"}, fieldModifierTokens(clrflags.FieldStatic))
	assert.Equal(t, []string{"readonly"}, fieldModifierTokens(clrflags.FieldInitOnly))
}

func TestMethodAccessToken(t *testing.T) {
	assert.Equal(t, "public", methodAccessToken(clrflags.MethodPublic))
	assert.Equal(t, "protected", methodAccessToken(clrflags.MethodFamily))
	assert.Equal(t, "protected internal", methodAccessToken(clrflags.MethodFamOrAssem))
	assert.Equal(t, "internal", methodAccessToken(clrflags.MethodFamAndAssem))
	assert.Equal(t, "internal", methodAccessToken(clrflags.MethodAssem))
	assert.Equal(t, "private", methodAccessToken(clrflags.MethodPrivate))
	assert.Equal(t, "", methodAccessToken(0))
}

func TestMethodModifierTokens(t *testing.T) {
	assert.Equal(t, []string{"static"}, methodModifierTokens(clrflags.MethodStatic))
	assert.Equal(t, []string{"abstract"}, methodModifierTokens(clrflags.MethodAbstract|clrflags.MethodNewSlot))
	assert.Equal(t, []string{"virtual"}, methodModifierTokens(clrflags.MethodVirtual|clrflags.MethodNewSlot))
	assert.Equal(t, []string{"override"}, methodModifierTokens(clrflags.MethodVirtual|clrflags.MethodReuseSlot))
	assert.Equal(t, []string{"abstract", "override"}, methodModifierTokens(clrflags.MethodAbstract|clrflags.MethodReuseSlot))
	assert.Equal(t, []string{"sealed", "override"}, methodModifierTokens(clrflags.MethodFinal|clrflags.MethodReuseSlot))
	assert.Equal(t, []string{"extern"}, methodModifierTokens(clrflags.MethodPInvokeImpl))
	assert.Equal(t, []string{"static", "extern"}, methodModifierTokens(clrflags.MethodStatic|clrflags.MethodPInvokeImpl))
}

func TestParamDirectionToken(t *testing.T) {
	assert.Equal(t, "out", paramDirectionToken(clrflags.ParamOut))
	assert.Equal(t, "in", paramDirectionToken(clrflags.ParamIn))
	assert.Equal(t, "ref", paramDirectionToken(0))
}

func TestParamAttributeTokens(t *testing.T) {
	assert.Equal(t, "[In] ", paramAttributeTokens(clrflags.ParamIn))
	assert.Equal(t, "[Out] ", paramAttributeTokens(clrflags.ParamOut))
	assert.Equal(t, "[In] [Out] ", paramAttributeTokens(clrflags.ParamIn|clrflags.ParamOut))
	assert.Equal(t, "", paramAttributeTokens(0))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "List_1", sanitize("List`1"))
}
