// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bootstrap is the entry point the injected agent calls once it is
// mapped into the target process (spec.md §4.7): it waits out a startup
// delay so the game's own IL2CPP initialization finishes first, attaches a
// console, loads the two modules it needs (resolved beside the host
// executable per spec.md §6 unless the configured name is already
// absolute), binds the function table, and runs whichever emitters the
// configuration selects.
package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/abi"
	"github.com/saferwall/il2cppdump/internal/csdump"
	"github.com/saferwall/il2cppdump/internal/methoddump"
	"github.com/saferwall/il2cppdump/internal/modloader"
	"github.com/saferwall/il2cppdump/internal/runtime"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

// Run executes the full startup sequence against cfg. It is the single
// entry point both cmd/agent's exported Init and cmd/dumper's offline mode
// call into.
func Run(cfg *config.Config, log *xlog.Helper) error {
	time.Sleep(time.Duration(cfg.StartupDelaySeconds) * time.Second)

	if err := modloader.AllocConsole(); err != nil {
		log.Warnf("allocating console: %v", err)
	}

	fmt.Println("honkai-dumper")

	root, err := modloader.ExecutableDir()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	runtimeModule, err := modloader.Load(modloader.ResolveNear(root, cfg.RuntimeLibraryName))
	if err != nil {
		return fmt.Errorf("bootstrap: loading runtime library: %w", err)
	}

	gameModule, err := modloader.Load(modloader.ResolveNear(root, cfg.GameLibraryName))
	if err != nil {
		return fmt.Errorf("bootstrap: loading game library: %w", err)
	}

	table := abi.Bind(runtimeModule.Base, cfg.FunctionTableOffset)
	if err := runtime.Init(table); err != nil {
		return fmt.Errorf("bootstrap: binding function table: %w", err)
	}
	facade := runtime.Get()

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("bootstrap: creating output dir: %w", err)
		}
	}

	if _, err := methoddump.Emit(facade, gameModule, cfg.MethodRecord, cfg.OutputDir, log); err != nil {
		return fmt.Errorf("bootstrap: method offset emitter: %w", err)
	}

	if cfg.Mode == config.OffsetAndSource {
		if _, err := csdump.Emit(facade, gameModule, cfg.MethodRecord, cfg.OutputDir, log); err != nil {
			return fmt.Errorf("bootstrap: pseudo-source emitter: %w", err)
		}
	}

	fmt.Println("done")
	return nil
}
