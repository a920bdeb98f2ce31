// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build windows

package modloader

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// Lazy-bound kernel32/psapi procs, following the pattern the retrieved
// wireguard tun/wintun/memmod package uses for Windows APIs not wrapped by
// golang.org/x/sys/windows: NewLazySystemDLL + NewProc + Call.
var (
	modKernel32 = windows.NewLazySystemDLL("kernel32.dll")
	modPsapi    = windows.NewLazySystemDLL("psapi.dll")

	procGetModuleInformation = modPsapi.NewProc("GetModuleInformation")
	procAllocConsole         = modKernel32.NewProc("AllocConsole")
)

// moduleInfo mirrors MODULEINFO from psapi.h.
type moduleInfo struct {
	BaseOfDll   uintptr
	SizeOfImage uint32
	EntryPoint  uintptr
}

// load maps path into the current process with LoadLibrary and queries the
// loader for the resulting image's base and size.
func load(path string) (*Module, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil || handle == 0 {
		return nil, ErrLoadFailed
	}

	var info moduleInfo
	proc := windows.CurrentProcess()
	ret, _, _ := procGetModuleInformation.Call(
		uintptr(proc),
		uintptr(handle),
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
	)
	if ret == 0 {
		return nil, ErrImageInfoFailed
	}

	return &Module{Base: uintptr(handle), Size: info.SizeOfImage}, nil
}

// allocConsole attaches a new console to the current process, used by
// Bootstrap before it prints anything.
func allocConsole() error {
	ret, _, _ := procAllocConsole.Call()
	if ret == 0 {
		return ErrLoadFailed
	}
	return nil
}
