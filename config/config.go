// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package config holds the build/load-time knobs spec.md §6 calls out as
// configuration: runtime library names, the function-table offset and slot
// map, the direct method-record offsets, the startup delay and which
// emitters to run. Defaults match the shipped values observed in the
// source this module implements.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// EmitterMode selects which emitters Bootstrap runs. Exposing this as a
// runtime choice (rather than the source's compile-time one) is a
// deliberate, spec-sanctioned improvement.
type EmitterMode string

const (
	// OffsetOnly runs only the Method Offset Emitter.
	OffsetOnly EmitterMode = "offset_only"
	// OffsetAndSource runs the Method Offset Emitter followed by the
	// Pseudo-Source Emitter.
	OffsetAndSource EmitterMode = "offset_and_source"
)

// Slot is a function-table entry index, see spec.md §6.
type Slot uint32

// Required slots, needed by the Method Offset Emitter.
const (
	SlotAssemblyGetImage    Slot = 22
	SlotClassGetMethods     Slot = 35
	SlotClassGetName        Slot = 37
	SlotClassGetNamespace   Slot = 39
	SlotDomainGet           Slot = 63
	SlotDomainGetAssemblies Slot = 65
	SlotMethodGetName       Slot = 117
	SlotImageGetClassCount  Slot = 169
	SlotImageGetClass       Slot = 170
)

// Optional slots, needed only by the Pseudo-Source Emitter.
const (
	SlotClassGetFields      Slot = 31
	SlotClassGetInterfaces  Slot = 33
	SlotClassGetParent      Slot = 40
	SlotClassIsValueType    Slot = 43
	SlotClassGetFlags       Slot = 45
	SlotClassFromType       Slot = 49
	SlotClassIsEnum         Slot = 53
	SlotFieldGetFlags       Slot = 72
	SlotFieldGetName        Slot = 73
	SlotFieldGetOffset      Slot = 75
	SlotFieldGetType        Slot = 76
	SlotMethodGetReturnType Slot = 116
	SlotMethodGetParamCount Slot = 123
	SlotMethodGetParam      Slot = 124
	SlotTypeGetName         Slot = 161
	SlotTypeIsByRef         Slot = 162
	SlotTypeGetAttrs        Slot = 163
	SlotImageGetName        Slot = 168
)

// FunctionNames maps every slot this module knows about to the IL2CPP
// export name it is bound to. abi.Bind reads exactly the slots listed here;
// the names themselves are used only for diagnostics (error messages,
// logs).
var FunctionNames = map[Slot]string{
	SlotAssemblyGetImage:    "il2cpp_assembly_get_image",
	SlotClassGetMethods:     "il2cpp_class_get_methods",
	SlotClassGetName:        "il2cpp_class_get_name",
	SlotClassGetNamespace:   "il2cpp_class_get_namespace",
	SlotDomainGet:           "il2cpp_domain_get",
	SlotDomainGetAssemblies: "il2cpp_domain_get_assemblies",
	SlotMethodGetName:       "il2cpp_method_get_name",
	SlotImageGetClassCount:  "il2cpp_image_get_class_count",
	SlotImageGetClass:       "il2cpp_image_get_class",
	SlotClassGetFields:      "il2cpp_class_get_fields",
	SlotClassGetInterfaces:  "il2cpp_class_get_interfaces",
	SlotClassGetParent:      "il2cpp_class_get_parent",
	SlotClassIsValueType:    "il2cpp_class_is_valuetype",
	SlotClassGetFlags:       "il2cpp_class_get_flags",
	SlotClassFromType:       "il2cpp_class_from_type",
	SlotClassIsEnum:         "il2cpp_class_is_enum",
	SlotFieldGetFlags:       "il2cpp_field_get_flags",
	SlotFieldGetName:        "il2cpp_field_get_name",
	SlotFieldGetOffset:      "il2cpp_field_get_offset",
	SlotFieldGetType:        "il2cpp_field_get_type",
	SlotMethodGetReturnType: "il2cpp_method_get_return_type",
	SlotMethodGetParamCount: "il2cpp_method_get_param_count",
	SlotMethodGetParam:      "il2cpp_method_get_param",
	SlotTypeGetName:         "il2cpp_type_get_name",
	SlotTypeIsByRef:         "il2cpp_type_is_byref",
	SlotTypeGetAttrs:        "il2cpp_type_get_attrs",
	SlotImageGetName:        "il2cpp_image_get_name",
}

// MethodRecord describes the two fields the emitters dereference directly
// on a MethodInfo handle, bypassing the thunk table entirely. Offsets are
// per-build; defaults match spec.md §6.
type MethodRecord struct {
	CodePointerOffset uintptr `json:"code_pointer_offset"`
	FlagsOffset       uintptr `json:"flags_offset"`
}

// Config is every build/load-time knob described in spec.md §6.
type Config struct {
	// RuntimeLibraryName is the file holding the IL2CPP function table
	// (default "UnityPlayer.dll"). Bootstrap resolves a bare name against
	// the host executable's own directory (spec.md §6); an absolute path
	// here is used as-is.
	RuntimeLibraryName string `json:"runtime_library_name"`

	// GameLibraryName is the file holding the generated native code whose
	// address range bounds valid method pointers (default "GameAssembly.dll").
	// Resolved the same way as RuntimeLibraryName.
	GameLibraryName string `json:"game_library_name"`

	// FunctionTableOffset locates the code-pointer array inside the mapped
	// runtime library.
	FunctionTableOffset uintptr `json:"function_table_offset"`

	// MethodRecord offsets for the direct memory reads.
	MethodRecord MethodRecord `json:"method_record"`

	// StartupDelaySeconds is how long Bootstrap waits before touching the
	// runtime's metadata tables.
	StartupDelaySeconds int `json:"startup_delay_seconds"`

	// Mode selects which emitters run.
	Mode EmitterMode `json:"mode"`

	// OutputDir is the directory methods.json/dump.cs are written to; empty
	// means the process's current directory, per spec.md §6.
	OutputDir string `json:"output_dir,omitempty"`
}

// Default shipped function-table offsets observed across builds; the first
// is used unless overridden. Kept as a list because spec.md notes these
// "vary by game version" and more than one has been observed in the wild.
var DefaultFunctionTableOffsets = []uintptr{
	0x1ed4ee8,
	0x1e89278,
	0x1cee5c0,
}

// Default returns the shipped configuration defaults.
func Default() *Config {
	return &Config{
		RuntimeLibraryName:  "UnityPlayer.dll",
		GameLibraryName:     "GameAssembly.dll",
		FunctionTableOffset: DefaultFunctionTableOffsets[0],
		MethodRecord: MethodRecord{
			CodePointerOffset: 8,
			FlagsOffset:       0x30,
		},
		StartupDelaySeconds: 10,
		Mode:                OffsetAndSource,
	}
}

// Load reads a JSON configuration file, applying it over Default() so a
// partial override file only needs to name the knobs it changes.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
