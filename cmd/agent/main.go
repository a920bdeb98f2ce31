// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command agent is built with -buildmode=c-shared; the host process loads
// the resulting DLL and calls its exported Init once it has mapped the
// library into the target game process. Init runs the whole bootstrap
// sequence on a background goroutine and returns immediately, since the
// host loader's calling thread must not block on the startup delay.
package main

import "C"

import (
	"os"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/bootstrap"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

//export Init
func Init() {
	cfg := config.Default()
	if path := os.Getenv("IL2CPPDUMP_CONFIG"); path != "" {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		}
	}

	log := xlog.NewHelper(xlog.NewFilter(xlog.NewStdLogger(os.Stderr), xlog.FilterLevel(xlog.LevelInfo)))

	go func() {
		if err := bootstrap.Run(cfg, log); err != nil {
			log.Errorf("bootstrap failed: %v", err)
		}
	}()
}

func main() {}
