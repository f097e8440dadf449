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
	"bytes"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
	"github.com/tcow-dev/tcow/pkg/tario"
)

// diffCmd compares the fully resolved trees of two .tcow archives and
// reports added, removed, and modified paths. It ignores --file: both
// archives are named explicitly since there are two of them.
func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <archive-a> <archive-b>",
		Short: "Compare the resolved contents of two .tcow archives",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := archive.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := archive.Open(args[1])
			if err != nil {
				return err
			}
			defer b.Close()

			aEntries, err := a.ResolveSubtree("")
			if err != nil {
				return err
			}
			bEntries, err := b.ResolveSubtree("")
			if err != nil {
				return err
			}
			reportWarnings(cmd, a)
			reportWarnings(cmd, b)

			aByPath := indexByPath(aEntries)
			bByPath := indexByPath(bEntries)

			var added, removed, modified []string
			for p, be := range bByPath {
				ae, ok := aByPath[p]
				if !ok {
					added = append(added, p)
					continue
				}
				if ae.Typeflag != be.Typeflag || !bytes.Equal(ae.Content, be.Content) || ae.Mode != be.Mode {
					modified = append(modified, p)
				}
			}
			for p := range aByPath {
				if _, ok := bByPath[p]; !ok {
					removed = append(removed, p)
				}
			}

			sort.Strings(added)
			sort.Strings(removed)
			sort.Strings(modified)

			for _, p := range added {
				fmt.Fprintf(cmd.OutOrStdout(), "+ %s\n", p)
			}
			for _, p := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", p)
			}
			for _, p := range modified {
				fmt.Fprintf(cmd.OutOrStdout(), "~ %s\n", p)
			}
			return nil
		},
	}
}

func indexByPath(entries []tario.Entry) map[string]tario.Entry {
	out := make(map[string]tario.Entry, len(entries))
	for _, e := range entries {
		out[e.Path] = e
	}
	return out
}
