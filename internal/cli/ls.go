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
	"sort"

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
	"github.com/tcow-dev/tcow/pkg/tario"
)

func lsCmd() *cobra.Command {
	var layerIndex int
	var singleLayer bool
	var showWhiteouts bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the entries of a directory, resolved through the union of all layers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireFile()
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := archive.Open(path)
			if err != nil {
				return err
			}
			defer a.Close()

			mode := archive.ListUnion
			switch {
			case singleLayer:
				mode = archive.ListSingleLayer
			case showWhiteouts:
				mode = archive.ListAll
			}

			entries, err := a.List(dir, mode, layerIndex)
			if err != nil {
				return err
			}
			reportWarnings(cmd, a)
			sort.SliceStable(entries, func(i, j int) bool {
				if entries[i].Entry.Path != entries[j].Entry.Path {
					return entries[i].Entry.Path < entries[j].Entry.Path
				}
				return entries[i].LayerIndex > entries[j].LayerIndex
			})

			for _, v := range entries {
				marker := " "
				if v.Whiteout {
					marker = "X"
				} else if v.Entry.Typeflag == tario.TypeDir {
					marker = "/"
				}
				if mode == archive.ListAll {
					hidden := ""
					if v.Hidden {
						hidden = " [hidden]"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s layer %d: %s%s\n", marker, v.LayerIndex, v.Entry.Path, hidden)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, v.Entry.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&singleLayer, "layer", false, "list raw entries of a single on-disk layer instead of resolving the union")
	cmd.Flags().IntVar(&layerIndex, "layer-index", -1, "layer index to list, with --layer")
	cmd.Flags().BoolVar(&showWhiteouts, "show-whiteouts", false, "also list names deleted in a higher layer")
	return cmd
}
