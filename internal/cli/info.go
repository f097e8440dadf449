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
	"github.com/tcow-dev/tcow/pkg/version"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show archive-level metadata: layer count, label, last modified",
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

			fmt.Fprintf(cmd.OutOrStdout(), "path:           %s\n", a.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "layers:         %d\n", a.LayerCount())
			fmt.Fprintf(cmd.OutOrStdout(), "last modified:  %s\n", a.LastModified())
			if label := a.Label(); label != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "label:          %s\n", *label)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pending writes: %d\n", a.PendingWrites())
			fmt.Fprintf(cmd.OutOrStdout(), "tcow version:   %s\n", version.TcowVersion())
			return nil
		},
	}
}
