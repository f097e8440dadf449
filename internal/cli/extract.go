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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
	"github.com/tcow-dev/tcow/pkg/tario"
)

func extractCmd() *cobra.Command {
	var stripPrefix string
	var outDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "extract [subtree]",
		Short: "Materialize the union-resolved tree (or a subtree) onto the local filesystem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := requireFile()
			if err != nil {
				return err
			}
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			if outDir == "" {
				outDir = "."
			}

			a, err := archive.Open(file)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.ResolveSubtree(root)
			if err != nil {
				return err
			}
			reportWarnings(cmd, a)

			if dryRun {
				for _, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "dry run: would extract %s (%d bytes)\n", e.Path, e.Size)
				}
				return nil
			}

			for _, e := range entries {
				rel := e.Path
				if stripPrefix != "" {
					rel = strings.TrimPrefix(rel, strings.Trim(stripPrefix, "/")+"/")
				}
				dest := filepath.Join(outDir, filepath.FromSlash(rel))

				switch e.Typeflag {
				case tario.TypeDir:
					if err := os.MkdirAll(dest, os.FileMode(e.Mode)|0o700); err != nil {
						return err
					}
				default:
					if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
						return err
					}
					if err := os.WriteFile(dest, e.Content, os.FileMode(e.Mode)); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "extracted %d entries to %s\n", len(entries), outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&stripPrefix, "strip-prefix", "", "strip this leading path component from each extracted entry")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "destination directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be extracted without writing to the filesystem")
	return cmd
}
