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

package archive

import (
	"fmt"

	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

// InsertFile stages a regular file write into the writable buffer. It does
// not touch disk; call Flush or Snapshot to persist. Writing a path that
// already exists in a lower layer is an implicit copy-up: the old bytes
// stay put and are simply shadowed once this entry is visible (spec.md
// §4.7).
func (a *Archive) InsertFile(path string, content []byte, mode uint32) error {
	return a.stageWrite(path, content, mode, tario.TypeRegular)
}

// InsertDir stages a directory entry.
func (a *Archive) InsertDir(path string, mode uint32) error {
	return a.stageWrite(path, nil, mode, tario.TypeDir)
}

func (a *Archive) stageWrite(path string, content []byte, mode uint32, typeflag byte) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	clean, err := validatePath(path)
	if err != nil {
		return err
	}
	if clean == "" {
		return fmt.Errorf("%w: cannot write to root", ErrInvalidPath)
	}
	a.writable = append(a.writable, tario.Entry{
		Path:     clean,
		Mode:     mode,
		Size:     uint64(len(content)),
		Mtime:    a.clock.Now().Unix(),
		Typeflag: typeflag,
		Content:  content,
	})
	return nil
}

// Delete stages a whiteout for path: a zero-byte marker that shadows any
// lower occurrence of path once flushed. Deleting a path with no lower
// occurrence is legal and simply records the whiteout.
func (a *Archive) Delete(path string) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	clean, err := validatePath(path)
	if err != nil {
		return err
	}
	if clean == "" {
		return fmt.Errorf("%w: cannot delete root", ErrInvalidPath)
	}
	a.writable = append(a.writable, tario.Entry{
		Path:     tario.WhiteoutPath(dirOf(clean), baseOf(clean)),
		Mode:     0,
		Size:     0,
		Mtime:    a.clock.Now().Unix(),
		Typeflag: tario.TypeRegular,
	})
	return nil
}

// dedupWritable collapses the writable buffer to at most one entry per
// path, keeping the last write for that path and preserving the relative
// order of the surviving entries (spec.md §4.7's flush-time dedup rule).
func dedupWritable(entries []tario.Entry) []tario.Entry {
	lastIdx := make(map[string]int, len(entries))
	for i, e := range entries {
		lastIdx[e.Path] = i
	}
	out := make([]tario.Entry, 0, len(lastIdx))
	for i, e := range entries {
		if lastIdx[e.Path] == i {
			out = append(out, e)
		}
	}
	return out
}

// Flush persists the writable buffer as a new Delta layer and clears it.
// It is a no-op if nothing is staged.
func (a *Archive) Flush() (*trailer.LayerDescriptor, error) {
	if len(a.writable) == 0 {
		return nil, nil
	}
	return a.flushAs(trailer.KindDelta)
}

func (a *Archive) flushAs(kind trailer.Kind) (*trailer.LayerDescriptor, error) {
	if err := a.requireWritable(); err != nil {
		return nil, err
	}
	deduped := dedupWritable(a.writable)
	raw, err := tario.Encode(deduped)
	if err != nil {
		return nil, fmt.Errorf("archive: encode layer: %w", err)
	}
	desc, err := a.appendLayer(kind, raw)
	if err != nil {
		return nil, err
	}
	a.writable = nil
	return &desc, nil
}
