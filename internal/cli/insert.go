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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
)

func insertCmd() *cobra.Command {
	var mode uint32
	var asDir bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "insert <archive-path> [source-file]",
		Short: "Write a file or directory and flush it into a new layer",
		Long: `Stage a file or directory write and flush it into a new layer.

With a source file argument, its contents are read and staged under
archive-path. With --dir, archive-path is staged as a directory instead.
The write is flushed to the .tcow file on disk before this command returns.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := requireFile()
			if err != nil {
				return err
			}

			target := args[0]

			if dryRun {
				size := int64(0)
				if !asDir {
					if len(args) != 2 {
						return cmd.Usage()
					}
					info, err := os.Stat(args[1])
					if err != nil {
						return err
					}
					size = info.Size()
				}
				if _, err := os.Stat(file); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "dry run: would create %s with an empty base layer and insert %s (%d bytes) as new delta layer 1\n", file, target, size)
					return nil
				}
				a, err := archive.Open(file)
				if err != nil {
					return err
				}
				defer a.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: would insert %s (%d bytes) as new delta layer %d\n", target, size, a.LayerCount())
				return nil
			}

			unlock, err := acquireLock(file)
			if err != nil {
				return err
			}
			defer unlock()

			var a *archive.Archive
			if _, statErr := os.Stat(file); statErr != nil {
				a, err = archive.Create(file)
			} else {
				a, err = archive.Open(file)
			}
			if err != nil {
				return err
			}
			defer a.Close()

			if asDir {
				if err := a.InsertDir(target, mode); err != nil {
					return err
				}
			} else {
				if len(args) != 2 {
					return cmd.Usage()
				}
				content, err := os.ReadFile(args[1])
				if err != nil {
					return err
				}
				if err := a.InsertFile(target, content, mode); err != nil {
					return err
				}
			}

			_, err = a.Flush()
			return err
		},
	}
	cmd.Flags().Uint32Var(&mode, "mode", 0o644, "POSIX permission bits for the staged entry")
	cmd.Flags().BoolVar(&asDir, "dir", false, "stage archive-path as a directory instead of a file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without modifying the archive")
	return cmd
}
