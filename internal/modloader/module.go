// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package modloader implements the Module Loader component: mapping a named
// shared library from the agent's on-disk neighborhood into the current
// process and reporting its base address and image size, per spec.md §4.1.
package modloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Errors, one per failure mode spec.md §7 names for this component.
var (
	// ErrLoadFailed is returned when the OS mapping call returns a null handle,
	// and by AllocConsole on Windows when no console can be allocated.
	ErrLoadFailed = errors.New("modloader: load failed")

	// ErrImageInfoFailed is returned when the mapped image's size cannot be
	// determined.
	ErrImageInfoFailed = errors.New("modloader: could not determine image size")

	// ErrRootNotFound is returned when the host executable's own directory
	// cannot be determined, mirroring the original agent's RootNotFound
	// error kind.
	ErrRootNotFound = errors.New("modloader: could not determine host executable directory")
)

// FileNotFoundError names the missing library, as spec.md §7's
// FileNotFound(libname) requires.
type FileNotFoundError struct {
	Name string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("modloader: library not found: %s", e.Name)
}

// Module is a loaded shared library: base address and image size in bytes.
// It is scoped to process lifetime; there is no Unload.
type Module struct {
	Base uintptr
	Size uint32
}

// Contains reports whether ptr falls in the module's half-open address
// range [Base, Base+Size).
func (m *Module) Contains(ptr uintptr) bool {
	if ptr < m.Base {
		return false
	}
	return ptr-m.Base < uintptr(m.Size)
}

// RVA converts an absolute pointer inside the module to an image-relative
// offset. Callers must check Contains first.
func (m *Module) RVA(ptr uintptr) uint64 {
	return uint64(ptr - m.Base)
}

// Load maps the shared library at path into the current process and
// reports its base address and mapped image size. The platform-specific
// implementation lives in module_windows.go (real OS loader, used when the
// agent is actually injected into a target process) and module_fallback.go
// (parses the on-disk PE headers instead, used on non-Windows builds and by
// every test in this module).
func Load(path string) (*Module, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &FileNotFoundError{Name: path}
	}
	return load(path)
}

// AllocConsole attaches a console to the current process, per spec.md
// §4.7. It is a no-op on platforms without a console subsystem.
func AllocConsole() error {
	return allocConsole()
}

// ExecutableDir returns the directory containing the current process's
// own executable — the root spec.md §6 requires the runtime and game
// libraries to live beside, mirroring the original agent's
// current_exe().parent().
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}
	return filepath.Dir(exe), nil
}

// ResolveNear joins name onto dir unless name is already an absolute
// path, in which case it is returned unchanged. This mirrors Rust's
// PathBuf::join (the original bootstrap's current_exe().parent().join(name)
// semantics), so a config that supplies an absolute fixture path for
// testing is never silently rewritten relative to the host executable.
func ResolveNear(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
