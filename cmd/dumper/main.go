// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command dumper runs the full agent pipeline from the command line, with
// an optional configuration file, instead of waiting to be injected into a
// running game process. It binds the function table by reading memory at
// the loaded runtime module's base, so it produces output only where the
// runtime library is mapped by the Windows loader; the non-Windows fallback
// loader reports a base of 0. It does not replay a captured runtime.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/bootstrap"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

var (
	configPath string
	verbose    bool
)

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func newLogger() *xlog.Helper {
	level := xlog.LevelInfo
	if verbose {
		level = xlog.LevelDebug
	}
	return xlog.NewHelper(xlog.NewFilter(xlog.NewStdLogger(os.Stderr), xlog.FilterLevel(level)))
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return bootstrap.Run(cfg, newLogger())
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "dumper",
		Short: "Dumps IL2CPP metadata from a Unity game",
		Long:  "Loads the runtime and game libraries, binds the IL2CPP function table and writes methods.json and dump.cs",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDump(cmd, args); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print("You are using version 0.0.1")
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON configuration file overriding the defaults")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
