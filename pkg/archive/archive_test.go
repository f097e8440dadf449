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

package archive_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tcow-dev/tcow/pkg/archive"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

func fixedClock() archive.Clock {
	return archive.FixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func newTestArchive(t *testing.T) (*archive.Archive, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tcow")
	a, err := archive.Create(path, archive.WithClock(fixedClock()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, path
}

func TestCreateAndRead(t *testing.T) {
	a, path := newTestArchive(t)
	require.Equal(t, 1, a.LayerCount(), "Create should write an empty Base layer")

	require.NoError(t, a.InsertFile("hello.txt", []byte("hello"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := archive.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 2, reopened.LayerCount())
	e, ok, err := reopened.Lookup("hello.txt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(e.Content))
}

func TestOverwriteIsCopyUp(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.NoError(t, a.InsertFile("a.txt", []byte("v2"), 0o644))
	_, err = a.Flush()
	require.NoError(t, err)

	e, ok, err := a.Lookup("a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", string(e.Content))
	require.Equal(t, 3, a.LayerCount()) // Base + 2 Delta layers, old bytes untouched
}

func TestWhiteoutDeletion(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.NoError(t, a.Delete("a.txt"))
	_, err = a.Flush()
	require.NoError(t, err)

	_, ok, err := a.Lookup("a.txt")
	require.NoError(t, err)
	require.False(t, ok, "deleted path must not resolve")
}

func TestWriteAfterWhiteout(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.NoError(t, a.Delete("a.txt"))
	require.NoError(t, a.InsertFile("a.txt", []byte("v2"), 0o644))
	_, err = a.Flush()
	require.NoError(t, err)

	e, ok, err := a.Lookup("a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", string(e.Content), "a later write in the same flush must win over an earlier whiteout")
}

func TestCompactionReclaimsBytes(t *testing.T) {
	a, path := newTestArchive(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, a.InsertFile("churn.txt", []byte("version"), 0o644))
		_, err := a.Flush()
		require.NoError(t, err)
	}

	before, err := os.Stat(path)
	require.NoError(t, err)

	res, err := a.Compact("", true, false)
	require.NoError(t, err)
	require.Equal(t, 1, res.EntryCount)
	require.Equal(t, 1, a.LayerCount())

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Less(t, after.Size(), before.Size())
}

func TestCompactDryRunWritesNothing(t *testing.T) {
	a, path := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	before, err := os.Stat(path)
	require.NoError(t, err)

	res, err := a.Compact("", false, true)
	require.NoError(t, err)
	require.True(t, res.DryRun)

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, before.Size(), after.Size())
	require.Equal(t, 2, a.LayerCount(), "dry run must not collapse layers")
}

func TestVerifyDetectsCorruption(t *testing.T) {
	a, path := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	desc, err := a.Flush()
	require.NoError(t, err)
	require.NoError(t, a.Close())

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, int64(desc.Offset))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := archive.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Verify(false)
	require.NoError(t, err)
	require.False(t, res.OK())
	require.NotEmpty(t, res.Corrupt)
}

// rewriteTrailer overwrites path's trailer+footer region with layers,
// bypassing the mutating API: used to construct trailer states the normal
// write path would never produce on its own.
func rewriteTrailer(t *testing.T, path string, layers []trailer.LayerDescriptor, trailerOffset uint64) {
	t.Helper()
	tr := trailer.Trailer{Version: archive.FormatVersion, Layers: layers}
	trBuf, err := trailer.Encode(tr)
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteAt(trBuf, int64(trailerOffset))
	require.NoError(t, err)
	footer := trailer.EncodeFooter(trailer.Footer{TrailerOffset: trailerOffset, TrailerLen: uint32(len(trBuf))})
	_, err = f.WriteAt(footer[:], int64(trailerOffset)+int64(len(trBuf)))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(trailerOffset)+int64(len(trBuf))+int64(len(footer))))
}

func TestVerifySkipsMissingDigestWithoutFailing(t *testing.T) {
	a, path := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)
	descs := a.Descriptors()
	require.NoError(t, a.Close())

	// Blank the base layer's stored digest: this simulates a layer written
	// by a producer that never recorded one, which Verify must treat as
	// skipped rather than corrupt.
	descs[0].Digest = nil
	last := descs[len(descs)-1]
	rewriteTrailer(t, path, descs, last.Offset+last.Size)

	reopened, err := archive.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Verify(false)
	require.NoError(t, err)
	require.True(t, res.OK(), "a missing digest alone must not fail verification")
	require.Equal(t, []int{0}, res.Skipped)
	require.Empty(t, res.Corrupt)
}

func TestListAllReportsShadowedLowerLayerEntry(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("hello.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.NoError(t, a.InsertFile("hello.txt", []byte("v2"), 0o644))
	_, err = a.Flush()
	require.NoError(t, err)

	entries, err := a.List("", archive.ListAll, -1)
	require.NoError(t, err)

	var found []archive.VisibleEntry
	for _, v := range entries {
		if v.Entry.Path == "hello.txt" {
			found = append(found, v)
		}
	}
	require.Len(t, found, 2, "both the shadowing and shadowed occurrence must be reported")

	byLayer := map[int]archive.VisibleEntry{}
	for _, v := range found {
		byLayer[v.LayerIndex] = v
	}
	require.Contains(t, byLayer, 1)
	require.Contains(t, byLayer, 2)
	require.False(t, byLayer[2].Hidden, "the newest occurrence is the one Lookup would return")
	require.True(t, byLayer[1].Hidden, "the older occurrence is shadowed")
}

func TestOpenRejectsNonContiguousLayerDescriptors(t *testing.T) {
	a, path := newTestArchive(t)
	require.NoError(t, a.InsertFile("a.txt", []byte("v1"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)
	descs := a.Descriptors()
	require.NoError(t, a.Close())
	require.Len(t, descs, 2, "Create's Base layer plus one Delta flush")

	// Overlap the second descriptor with the first: still a valid footer
	// (trailer_offset+trailer_len+16 == EOF) but no longer contiguous.
	original := descs[1].Offset
	descs[1].Offset = descs[0].Offset
	trailerOffset := original + descs[len(descs)-1].Size
	rewriteTrailer(t, path, descs, trailerOffset)

	_, err = archive.Open(path)
	require.ErrorIs(t, err, archive.ErrTrailerBoundsInvalid)
}

func TestLookupInvalidPathRejected(t *testing.T) {
	a, _ := newTestArchive(t)
	_, _, err := a.Lookup("../escape")
	require.ErrorIs(t, err, archive.ErrInvalidPath)
}

func TestListUnionAppliesWhiteoutPrecedence(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("dir/a.txt", []byte("1"), 0o644))
	require.NoError(t, a.InsertFile("dir/b.txt", []byte("2"), 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.NoError(t, a.Delete("dir/a.txt"))
	_, err = a.Flush()
	require.NoError(t, err)

	visible, err := a.List("dir", archive.ListUnion, -1)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "dir/b.txt", visible[0].Entry.Path)
}

func TestSnapshotForceFlushesEvenWhenEmpty(t *testing.T) {
	a, _ := newTestArchive(t)
	before := a.LayerCount()
	desc, err := a.Snapshot("empty-snap")
	require.NoError(t, err)
	require.Equal(t, before+1, a.LayerCount())
	require.Equal(t, uint64(1024), desc.Size, "an empty layer is just the two-zero-block end-of-archive marker")

	label := a.Label()
	require.NotNil(t, label)
	require.Equal(t, "empty-snap", *label)
}

func TestReadOnlyArchiveRejectsMutation(t *testing.T) {
	a, path := newTestArchive(t)
	require.NoError(t, a.Close())
	require.NoError(t, os.Chmod(path, 0o444))

	ro, err := archive.Open(path)
	require.NoError(t, err)
	defer ro.Close()

	require.True(t, ro.ReadOnly())
	err = ro.InsertFile("x.txt", []byte("x"), 0o644)
	require.ErrorIs(t, err, archive.ErrReadOnly)
}

func TestOpaqueWhiteoutIgnoredButWarned(t *testing.T) {
	a, _ := newTestArchive(t)
	require.NoError(t, a.InsertFile("dir/.wh..wh..opq", nil, 0o644))
	_, err := a.Flush()
	require.NoError(t, err)

	require.Empty(t, a.Warnings(), "decoding happens lazily, not at flush time")

	entries, err := a.List("dir", archive.ListUnion, -1)
	require.NoError(t, err)
	require.Len(t, entries, 1, "an opaque whiteout is v1-visible as a regular zero-byte entry")

	warnings := a.Warnings()
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "dir/.wh..wh..opq")
}
