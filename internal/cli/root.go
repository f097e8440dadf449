// Copyright 2026 The tcow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli assembles the tcow command line: one cobra subcommand per
// archive operation, sharing global flags for the target file, log level,
// and color.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"sigs.k8s.io/release-utils/version"

	"github.com/tcow-dev/tcow/internal/flock"
	"github.com/tcow-dev/tcow/pkg/archive"
)

// GlobalOptions holds the flags every tcow subcommand inherits.
type GlobalOptions struct {
	File    string
	Color   string
	Quiet   bool
	Verbose int
}

var globalOpts = &GlobalOptions{}

// New builds the root tcow command and its full subcommand tree.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "tcow",
		Short:             "Inspect and mutate .tcow layered copy-on-write archives",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slag.Level(slog.LevelInfo)
			switch {
			case globalOpts.Quiet:
				level = slag.Level(slog.LevelError)
			case globalOpts.Verbose == 1:
				level = slag.Level(slog.LevelDebug)
			case globalOpts.Verbose > 1:
				level = slag.Level(slog.LevelDebug - 1)
			}

			if !wantColor(globalOpts.Color) {
				os.Setenv("NO_COLOR", "1")
			}
			handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true, Level: charmlog.Level(level)})
			logger := clog.New(handler)
			slog.SetDefault(slog.New(handler))
			cmd.SetContext(clog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&globalOpts.File, "file", "f", os.Getenv("TCOW_FILE"), "path to the .tcow archive (default: $TCOW_FILE)")
	cmd.PersistentFlags().StringVar(&globalOpts.Color, "color", "auto", `colorize output: "auto", "always", or "never"`)
	cmd.PersistentFlags().BoolVarP(&globalOpts.Quiet, "quiet", "q", false, "only log errors")
	cmd.PersistentFlags().CountVarP(&globalOpts.Verbose, "verbose", "v", "print more information (can be specified twice)")

	cmd.AddCommand(
		infoCmd(),
		layersCmd(),
		lsCmd(),
		catCmd(),
		statCmd(),
		insertCmd(),
		deleteCmd(),
		extractCmd(),
		snapshotCmd(),
		compactCmd(),
		verifyCmd(),
		diffCmd(),
		version.Version(),
	)
	return cmd
}

func wantColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// requireFile resolves the target archive path from --file/$TCOW_FILE,
// erroring if neither was set.
func requireFile() (string, error) {
	if globalOpts.File == "" {
		return "", fmt.Errorf("no archive specified: pass --file or set $TCOW_FILE")
	}
	return globalOpts.File, nil
}

// reportWarnings logs any non-fatal notices accumulated on a (currently,
// reserved opaque-whiteout markers seen on read) via the command's logger.
func reportWarnings(cmd *cobra.Command, a *archive.Archive) {
	log := clog.FromContext(cmd.Context())
	for _, w := range a.Warnings() {
		log.Warnf("%s", w)
	}
}

// acquireLock takes an exclusive advisory lock on the sidecar file
// path+".lock" (created if missing and left in place afterwards) so two tcow
// invocations can't interleave writes to the same archive. The returned
// func releases it.
func acquireLock(path string) (func(), error) {
	lk, err := flock.New(path + ".lock")
	if err != nil {
		return nil, err
	}
	if err := lk.Lock(false); err != nil {
		_ = lk.Close()
		return nil, fmt.Errorf("acquiring lock on %s: %w", path, err)
	}
	return func() { _ = lk.Close() }, nil
}
