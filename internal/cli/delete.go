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

func deleteCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Write a whiteout for path and flush it into a new layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := requireFile()
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: would write a whiteout for %s as a new layer\n", args[0])
				return nil
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

			if err := a.Delete(args[0]); err != nil {
				return err
			}
			_, err = a.Flush()
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be deleted without modifying the archive")
	return cmd
}
