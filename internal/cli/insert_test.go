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

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tcow-dev/tcow/internal/cli"
	"github.com/tcow-dev/tcow/pkg/archive"
)

func run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := cli.New()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out, err
}

// TestInsertPersistsWithoutAnExplicitFlushFlag guards against a regression
// where insert staged a write but never flushed it: running the documented
// command with no extra flags must leave the write on disk.
func TestInsertPersistsWithoutAnExplicitFlushFlag(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.tcow")
	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	_, err := run(t, "insert", "--file", file, "hello.txt", src)
	require.NoError(t, err)

	a, err := archive.Open(file)
	require.NoError(t, err)
	defer a.Close()

	e, ok, err := a.Lookup("hello.txt")
	require.NoError(t, err)
	require.True(t, ok, "insert must flush the write to disk by the time the command returns")
	require.Equal(t, "hello", string(e.Content))
}

// TestDeletePersistsWithoutAnExplicitFlushFlag mirrors the insert case for
// delete: the whiteout must be on disk once the command returns.
func TestDeletePersistsWithoutAnExplicitFlushFlag(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.tcow")
	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	_, err := run(t, "insert", "--file", file, "hello.txt", src)
	require.NoError(t, err)

	_, err = run(t, "delete", "--file", file, "hello.txt")
	require.NoError(t, err)

	a, err := archive.Open(file)
	require.NoError(t, err)
	defer a.Close()

	_, ok, err := a.Lookup("hello.txt")
	require.NoError(t, err)
	require.False(t, ok, "delete must flush the whiteout to disk by the time the command returns")
}

func TestInsertDryRunWritesNoFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.tcow")
	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	out, err := run(t, "insert", "--file", file, "--dry-run", "hello.txt", src)
	require.NoError(t, err)
	require.Contains(t, out.String(), "dry run")

	_, statErr := os.Stat(file)
	require.True(t, os.IsNotExist(statErr), "dry run must not create the archive")
}
