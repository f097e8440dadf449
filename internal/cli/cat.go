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
	"github.com/spf13/cobra"

	"github.com/tcow-dev/tcow/pkg/archive"
)

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print the union-resolved content of a file to stdout",
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
			_, err = cmd.OutOrStdout().Write(e.Content)
			return err
		},
	}
}
