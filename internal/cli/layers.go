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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
)

func layersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List on-disk layers, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireFile()
			if err != nil {
				return err
			}
			a, err := archive.Open(path)
			if err != nil {
				return err
			}
			defer a.Close()

			descs := a.Descriptors()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(descs)
			}

			for i, d := range descs {
				digest := "(none)"
				if d.Digest != nil {
					digest = *d.Digest
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %-6s offset=%-10d size=%-10d created=%s digest=%s\n",
					i, d.Kind, d.Offset, d.Size, d.CreatedAt, digest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit layer descriptors as a JSON array")
	return cmd
}
