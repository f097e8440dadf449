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

func verifyCmd() *cobra.Command {
	var fixMissing bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-hash every on-disk layer against its stored digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := requireFile()
			if err != nil {
				return err
			}

			var a *archive.Archive
			if fixMissing {
				unlock, err := acquireLock(file)
				if err != nil {
					return err
				}
				defer unlock()
				a, err = archive.Open(file)
				if err != nil {
					return err
				}
			} else {
				a, err = archive.Open(file)
				if err != nil {
					return err
				}
			}
			defer a.Close()

			res, err := a.Verify(fixMissing)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checked %d layers\n", res.LayersChecked)
			for _, i := range res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "layer %d: no stored digest, skipped\n", i)
			}
			if res.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), "all layers verified")
				return nil
			}
			for _, i := range res.Corrupt {
				fmt.Fprintf(cmd.OutOrStdout(), "layer %d: digest mismatch\n", i)
			}
			return archive.ErrIntegrity
		},
	}
	cmd.Flags().BoolVar(&fixMissing, "fix-missing", false, "compute and store a digest for any layer that is missing one")
	return cmd
}
