// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package methoddump implements the Method Offset Emitter (spec.md §4.5): it
// walks every class and method IL2CPP exposes and writes methods.json, a
// map from a duplicate-disambiguated fully-qualified method name to the
// method's image-relative offset (RVA) within the game module.
package methoddump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/modloader"
	"github.com/saferwall/il2cppdump/internal/runtime"
	"github.com/saferwall/il2cppdump/internal/walker"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

// specialChars are rewritten to an underscore before a class or method name
// is used to build a methods.json key, matching check_repeats/
// replace_special_chars in the dumper this module's pseudo-source and
// offset emitters were both modeled on — generic method names otherwise
// embed '<', '>' and backtick characters that make poor map keys and worse
// filenames.
var specialCharsReplacer = strings.NewReplacer("<", "_", ">", "_", "`", "_")

func sanitize(name string) string {
	return specialCharsReplacer.Replace(name)
}

// Result is what Emit reports back to Bootstrap.
type Result struct {
	ValidMethods int
	OutputPath   string
}

// Emit walks the loaded metadata via f, computes each method's RVA against
// game, and writes the resulting name->offset map as pretty-printed JSON to
// outDir/methods.json.
func Emit(f *runtime.Facade, game *modloader.Module, rec config.MethodRecord, outDir string, log *xlog.Helper) (*Result, error) {
	offsets := make(map[string]string)
	order := make([]string, 0)
	seen := make(map[string]int)

	err := walker.Walk(f, func(entry walker.Entry) error {
		className, err := f.ClassGetName(entry.Class)
		if err != nil {
			return err
		}
		namespace, err := f.ClassGetNamespace(entry.Class)
		if err != nil {
			return err
		}
		className = sanitize(className)

		methods, err := f.ClassGetMethods(entry.Class)
		if err != nil {
			return err
		}

		for _, method := range methods {
			methodName, err := f.MethodGetName(method)
			if err != nil {
				return err
			}
			methodName = sanitize(methodName)

			ptr := runtime.CodePointer(method, rec)
			if !game.Contains(ptr) {
				log.Warnf("method %s.%s::%s code pointer outside game module bounds, skipping",
					namespace, className, methodName)
				continue
			}

			qualified := qualifiedName(namespace, className, methodName)
			key := dedupe(qualified, seen)
			if _, exists := offsets[key]; !exists {
				order = append(order, key)
			}
			offsets[key] = fmt.Sprintf("0x%x", game.RVA(ptr))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if outDir == "" {
		outDir = "."
	}
	path := filepath.Join(outDir, "methods.json")
	if err := writeJSON(path, order, offsets); err != nil {
		return nil, err
	}

	log.Infof("%d valid methods found and saved to methods.json", len(order))

	return &Result{ValidMethods: len(order), OutputPath: path}, nil
}

// qualifiedName builds "namespace.ClassName::MethodName", or
// "ClassName::MethodName" for the global namespace — the dot is only
// inserted when namespace is non-empty, matching dumper.rs.
func qualifiedName(namespace, className, methodName string) string {
	if namespace == "" {
		return fmt.Sprintf("%s::%s", className, methodName)
	}
	return fmt.Sprintf("%s.%s::%s", namespace, className, methodName)
}

// dedupe returns qualified unchanged the first time it is seen; the second
// and later occurrences get a "_0", "_1", ... suffix, so the bare name
// always names the first method with that fully-qualified name.
func dedupe(qualified string, seen map[string]int) string {
	count, ok := seen[qualified]
	if !ok {
		seen[qualified] = 0
		return qualified
	}
	seen[qualified] = count + 1
	return fmt.Sprintf("%s_%d", qualified, count)
}

// writeJSON serializes offsets as a JSON object in walk order (order):
// encoding/json always sorts map keys alphabetically, which would discard
// the insertion order spec.md requires the output preserve, so the object
// is built by hand instead of via json.Marshal on a map.
func writeJSON(path string, order []string, offsets map[string]string) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range order {
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("methoddump: marshaling key %q: %w", key, err)
		}
		valueJSON, err := json.Marshal(offsets[key])
		if err != nil {
			return fmt.Errorf("methoddump: marshaling value for %q: %w", key, err)
		}

		buf.WriteString("  ")
		buf.Write(keyJSON)
		buf.WriteString(": ")
		buf.Write(valueJSON)
		if i < len(order)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
