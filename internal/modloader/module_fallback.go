// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !windows

package modloader

import (
	"github.com/saferwall/il2cppdump/internal/peimage"
)

// load on non-Windows hosts cannot ask the OS loader to map a Windows DLL
// for execution, so it falls back to parsing the on-disk PE headers with
// peimage to recover SizeOfImage — the same value GetModuleInformation
// would report, just read from the file's optional header instead of the
// live loader. The returned base is 0: the file's code is not mapped in
// this mode, so only the reported size is meaningful.
func load(path string) (*Module, error) {
	pe, err := peimage.Open(path)
	if err != nil {
		return nil, ErrImageInfoFailed
	}
	defer pe.Close()

	return &Module{Base: 0, Size: pe.SizeOfImage}, nil
}

// allocConsole is a no-op outside Windows; there is no console subsystem to
// attach to.
func allocConsole() error {
	return nil
}
