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

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
)

func compactCmd() *cobra.Command {
	var output string
	var inPlace bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Rewrite the archive down to a single, path-sorted Base layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := requireFile()
			if err != nil {
				return err
			}
			unlock, err := acquireLock(file)
			if err != nil {
				return err
			}
			defer unlock()

			a, err := archive.Open(file)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Compact(output, inPlace, dryRun)
			if err != nil {
				return err
			}
			reportWarnings(cmd, a)

			verb := "compacted"
			if dryRun {
				verb = "would compact"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries: %d -> %d bytes\n", verb, res.EntryCount, res.BytesBefore, res.BytesAfter)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the compacted archive to this path instead of in place")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "rewrite the open archive file directly (default when --output is omitted)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what compaction would do without writing anything")
	return cmd
}
