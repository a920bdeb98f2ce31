// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package csdump implements the Pseudo-Source Emitter (spec.md §4.6): it
// walks the same metadata the Method Offset Emitter does and renders it as
// C#-flavored pseudocode, one block per class, annotated with each method's
// RVA and virtual address.
package csdump

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/clrflags"
	"github.com/saferwall/il2cppdump/internal/modloader"
	"github.com/saferwall/il2cppdump/internal/runtime"
	"github.com/saferwall/il2cppdump/internal/walker"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

// vaBase is the fixed image base every class dump's method comment adds to
// an RVA to print a virtual address, matching the shipped default base
// address IL2CPP game binaries load at (spec.md §4.6).
const vaBase = 0x180000000

var specialCharsReplacer = strings.NewReplacer("<", "_", ">", "_", "`", "_")

func sanitize(name string) string {
	return specialCharsReplacer.Replace(name)
}

// joinTokens joins non-empty tokens with a space, so a field/method whose
// access token renders as "" (the unmatched/compiler-controlled access
// value, spec.md §6) doesn't leave a stray leading space in the output.
func joinTokens(tokens ...string) string {
	kept := tokens[:0:0]
	for _, t := range tokens {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// Result is what Emit reports back to Bootstrap.
type Result struct {
	ClassesWritten int
	OutputPath     string
}

// Emit walks the loaded metadata via f and writes dump.cs to outDir.
func Emit(f *runtime.Facade, game *modloader.Module, rec config.MethodRecord, outDir string, log *xlog.Helper) (*Result, error) {
	if outDir == "" {
		outDir = "."
	}
	path := filepath.Join(outDir, "dump.cs")

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csdump: creating %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	if err := writeImageHeaders(w, f); err != nil {
		return nil, err
	}

	classCount := 0
	err = walker.Walk(f, func(entry walker.Entry) error {
		if err := writeClass(w, f, game, rec, entry.Class, log); err != nil {
			return err
		}
		classCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("%d classes dumped to dump.cs", classCount)

	return &Result{ClassesWritten: classCount, OutputPath: path}, nil
}

// writeImageHeaders writes the Image-header section (spec.md §4.6): one
// "// Image {i}: {name}" line per non-null assembly, in ascending index
// order, concatenated ahead of the Class-block section below. It runs
// independently of the class walk so an assembly whose image declares no
// classes still gets a header line.
func writeImageHeaders(w *bufio.Writer, f *runtime.Facade) error {
	return walker.WalkImages(f, func(entry walker.ImageEntry) error {
		name, err := f.ImageGetName(entry.Image)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "// Image %d: %s\n", entry.AssemblyIndex, name)
		return nil
	})
}

func writeClass(w *bufio.Writer, f *runtime.Facade, game *modloader.Module, rec config.MethodRecord, class runtime.ClassHandle, log *xlog.Helper) error {
	name, err := f.ClassGetName(class)
	if err != nil {
		return err
	}
	name = sanitize(name)

	namespace, err := f.ClassGetNamespace(class)
	if err != nil {
		return err
	}

	flags, err := f.ClassGetFlags(class)
	if err != nil {
		return err
	}
	isValueType, _ := f.ClassIsValueType(class)
	isEnum, _ := f.ClassIsEnum(class)

	fmt.Fprintf(w, "\n// Namespace: %s\n", namespace)

	if flags&clrflags.TypeSerializable != 0 {
		fmt.Fprintln(w, "[Serializable]")
	}

	kind := classKindToken(flags, isValueType, isEnum)
	tokens := []string{classAccessToken(flags)}
	tokens = append(tokens, classModifierTokens(flags, isValueType, isEnum)...)
	tokens = append(tokens, kind, name)

	header := strings.Join(tokens, " ")

	if parent, err := f.ClassGetParent(class); err == nil && parent != 0 {
		if parentName, err := f.ClassGetName(parent); err == nil && parentName != "" {
			header += " : " + sanitize(parentName)
		}
	}

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "{")

	if err := writeFields(w, f, class); err != nil {
		return err
	}
	if err := writeMethods(w, f, game, rec, class, log); err != nil {
		return err
	}

	fmt.Fprintln(w, "}")

	return nil
}

func writeFields(w *bufio.Writer, f *runtime.Facade, class runtime.ClassHandle) error {
	fields, err := f.ClassGetFields(class)
	if err != nil {
		return err
	}

	fmt.Fprint(w, "\n\t// Fields\n")

	for _, field := range fields {
		flags, err := f.FieldGetFlags(field)
		if err != nil {
			return err
		}
		name, err := f.FieldGetName(field)
		if err != nil {
			return err
		}
		typ, err := f.FieldGetType(field)
		if err != nil {
			return err
		}
		typeName, err := f.TypeGetName(typ)
		if err != nil {
			return err
		}
		offset, offsetErr := f.FieldGetOffset(field)

		tokens := []string{fieldAccessToken(flags)}
		tokens = append(tokens, fieldModifierTokens(flags)...)
		tokens = append(tokens, typeName, name+";")

		line := "\t" + joinTokens(tokens...)
		if offsetErr == nil {
			line += fmt.Sprintf(" // 0x%x", offset)
		}
		fmt.Fprintln(w, line)
	}

	return nil
}

func writeMethods(w *bufio.Writer, f *runtime.Facade, game *modloader.Module, rec config.MethodRecord, class runtime.ClassHandle, log *xlog.Helper) error {
	methods, err := f.ClassGetMethods(class)
	if err != nil {
		return err
	}

	fmt.Fprint(w, "\n\t// Methods\n")

	for _, method := range methods {
		name, err := f.MethodGetName(method)
		if err != nil {
			return err
		}
		name = sanitize(name)

		returnType, err := f.MethodGetReturnType(method)
		var returnTypeName string
		if err == nil {
			returnTypeName, _ = f.TypeGetName(returnType)
			if byRef, _ := f.TypeIsByRef(returnType); byRef {
				returnTypeName = "ref " + returnTypeName
			}
		}
		if returnTypeName == "" {
			returnTypeName = "void"
		}

		params, err := renderParams(f, method)
		if err != nil {
			log.Warnf("method %s: reading parameters: %v", name, err)
		}

		flags := runtime.MethodFlags(method, rec)
		accessTokens := []string{methodAccessToken(flags)}
		accessTokens = append(accessTokens, methodModifierTokens(flags)...)
		accessTokens = append(accessTokens, returnTypeName, name+"("+params+")")

		fmt.Fprint(w, "\n")

		ptr := runtime.CodePointer(method, rec)
		if ptr != 0 {
			rva := game.RVA(ptr)
			fmt.Fprintf(w, "\t// RVA: 0x%x VA: 0x%x\n", rva, vaBase+rva)
		} else {
			fmt.Fprint(w, "\t// RVA: 0x0 VA: 0x0\n")
		}
		fmt.Fprintf(w, "\t%s { }\n", joinTokens(accessTokens...))
	}

	return nil
}

func renderParams(f *runtime.Facade, method runtime.MethodHandle) (string, error) {
	count, err := f.MethodGetParamCount(method)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		typ, err := f.MethodGetParam(method, i)
		if err != nil {
			return "", err
		}

		typeName, err := f.TypeGetName(typ)
		if err != nil {
			return "", err
		}

		byRef, _ := f.TypeIsByRef(typ)
		attrs, _ := f.TypeGetAttrs(typ)
		var part string
		if byRef {
			part = paramDirectionToken(attrs) + " " + typeName
		} else {
			part = paramAttributeTokens(attrs) + typeName
		}
		parts = append(parts, fmt.Sprintf("%s p%d", part, i))
	}

	return strings.Join(parts, ", "), nil
}
