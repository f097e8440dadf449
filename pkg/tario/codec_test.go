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

package tario_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tcow-dev/tcow/pkg/tario"
)

func regularEntry(path, content string) tario.Entry {
	return tario.Entry{
		Path:     path,
		Mode:     0o644,
		Typeflag: tario.TypeRegular,
		Size:     uint64(len(content)),
		Content:  []byte(content),
		Uname:    "root",
		Gname:    "root",
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := []tario.Entry{
		regularEntry("hello.txt", "hello world\n"),
		{Path: "dir", Typeflag: tario.TypeDir, Mode: 0o755},
		regularEntry("dir/nested.txt", "nested\n"),
	}

	buf, err := tario.Encode(entries)
	require.NoError(t, err)
	require.Equal(t, 0, len(buf)%512)
	require.GreaterOrEqual(t, len(buf), 1024)

	got, err := tario.DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i, e := range entries {
		require.Equal(t, e.Path, got[i].Path)
		require.Equal(t, e.Typeflag, got[i].Typeflag)
		require.Equal(t, e.Size, got[i].Size)
		require.Equal(t, e.Content, got[i].Content)
	}
}

func TestEncodeEmptyIsEndOfArchiveOnly(t *testing.T) {
	buf, err := tario.Encode(nil)
	require.NoError(t, err)
	require.Equal(t, 1024, len(buf))

	got, err := tario.DecodeAll(buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWhiteoutDetection(t *testing.T) {
	wo := tario.Entry{Path: "dir/.wh.foo", Typeflag: tario.TypeRegular, Size: 0}
	name, ok := wo.IsWhiteout()
	require.True(t, ok)
	require.Equal(t, "foo", name)

	rootWo := tario.Entry{Path: ".wh.bar", Typeflag: tario.TypeRegular, Size: 0}
	name, ok = rootWo.IsWhiteout()
	require.True(t, ok)
	require.Equal(t, "bar", name)

	notWo := regularEntry("plain.txt", "x")
	_, ok = notWo.IsWhiteout()
	require.False(t, ok)

	opaque := tario.Entry{Path: "dir/.wh..wh..opq", Typeflag: tario.TypeRegular, Size: 0}
	require.True(t, opaque.IsOpaqueWhiteout())
	_, ok = opaque.IsWhiteout()
	require.False(t, ok, "opaque whiteout must not be treated as a regular whiteout")
}

func TestNameTooLongFails(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	_, err := tario.Encode([]tario.Entry{regularEntry(string(long), "x")})
	require.ErrorIs(t, err, tario.ErrNameTooLong)
}

func TestLongPathWithValidPrefixSplitRoundTrips(t *testing.T) {
	// 150 bytes, '/' at index 60: prefix len 60 (<=155) and name len 89
	// (<=100) both fit, so this must encode instead of hitting ErrNameTooLong.
	dir := make([]byte, 60)
	for i := range dir {
		dir[i] = 'a'
	}
	base := make([]byte, 89)
	for i := range base {
		base[i] = 'b'
	}
	path := string(dir) + "/" + string(base)
	require.Len(t, path, 150)

	buf, err := tario.Encode([]tario.Entry{regularEntry(path, "x")})
	require.NoError(t, err)

	entries, err := tario.DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, path, entries[0].Path)
}

func TestBadChecksumFails(t *testing.T) {
	buf, err := tario.Encode([]tario.Entry{regularEntry("a", "1")})
	require.NoError(t, err)
	buf[5] ^= 0xFF // corrupt a byte inside the name field, checksum no longer matches

	_, err = tario.DecodeAll(buf)
	require.ErrorIs(t, err, tario.ErrBadChecksum)
}

func TestTruncatedContentFails(t *testing.T) {
	buf, err := tario.Encode([]tario.Entry{regularEntry("a", "hello")})
	require.NoError(t, err)
	truncated := buf[:512+2] // header only, content cut short

	_, err = tario.DecodeAll(truncated)
	require.ErrorIs(t, err, tario.ErrTarParse)
}
