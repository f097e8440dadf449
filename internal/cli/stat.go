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
	"github.com/tcow-dev/tcow/pkg/tario"
)

// statJSON is the --json rendering of a stat result.
type statJSON struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Mode     uint32 `json:"mode"`
	UID      uint32 `json:"uid"`
	GID      uint32 `json:"gid"`
	Size     uint64 `json:"size"`
	Mtime    int64  `json:"mtime"`
	Whiteout bool   `json:"whiteout"`
}

func statCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the union-resolved metadata of a file or directory",
		Args:  cobra.ExactArgs(1),
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

			e, ok, err := a.Lookup(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return archive.ErrNotFound
			}
			reportWarnings(cmd, a)

			kind := "file"
			if e.Typeflag == tario.TypeDir {
				kind = "dir"
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(statJSON{
					Path:  e.Path,
					Type:  kind,
					Mode:  e.Mode,
					UID:   e.UID,
					GID:   e.GID,
					Size:  e.Size,
					Mtime: e.Mtime,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "path:  %s\n", e.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "type:  %s\n", kind)
			fmt.Fprintf(cmd.OutOrStdout(), "mode:  %#o\n", e.Mode)
			fmt.Fprintf(cmd.OutOrStdout(), "uid:   %d\n", e.UID)
			fmt.Fprintf(cmd.OutOrStdout(), "gid:   %d\n", e.GID)
			fmt.Fprintf(cmd.OutOrStdout(), "size:  %d\n", e.Size)
			fmt.Fprintf(cmd.OutOrStdout(), "mtime: %d\n", e.Mtime)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit stat result as a JSON object")
	return cmd
}
