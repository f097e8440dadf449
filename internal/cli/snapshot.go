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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
)

func snapshotCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Force-flush the writable buffer into a new layer, even if empty",
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

			if label == "" {
				label = "snapshot-" + uuid.New().String()[:8]
			}

			desc, err := a.Snapshot(label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s layer at offset %d (%d bytes), label %q\n", desc.Kind, desc.Offset, desc.Size, label)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "label for this snapshot (default: a generated snapshot-<id> name)")
	return cmd
}
