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

// Package archive implements the tcow on-disk format and layered
// filesystem engine: file format I/O, the layer store, the union resolver,
// the copy-on-write engine, and the snapshot/compaction/verify operations
// described in spec.md §4.
//
// The package is laid out as one file per concern in a single package,
// following apko's pkg/build convention (build.go, layers.go, accounts.go,
// options.go all cooperating on one Context type).
package archive

import (
	"fmt"
	"os"

	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

// Archive is a single open .tcow file: the on-disk layer descriptors plus
// an in-memory writable buffer staged since the last flush.
//
// The engine exclusively owns f and the writable buffer for the lifetime of
// the session (spec.md §5): there is no internal concurrency, and callers
// must not share an Archive across goroutines without external
// synchronization.
type Archive struct {
	f    *os.File
	path string

	readOnly bool
	clock    Clock

	header Header

	// trailerOffset is the byte offset at which the current trailer
	// begins; it doubles as "one past the end of the last layer".
	trailerOffset uint64

	layers       []trailer.LayerDescriptor
	lastModified string
	label        *string

	writable []tario.Entry

	warnings []string
	warnSeen map[string]bool
}

// Option configures an Archive at Open/Create time.
type Option func(*Archive)

// WithClock overrides the archive's time source. Defaults to the system
// clock.
func WithClock(c Clock) Option {
	return func(a *Archive) { a.clock = c }
}

func newArchive(f *os.File, path string, readOnly bool, opts []Option) *Archive {
	a := &Archive{
		f:        f,
		path:     path,
		readOnly: readOnly,
		clock:    realClock{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Path returns the filesystem path this archive was opened or created from.
func (a *Archive) Path() string { return a.path }

// ReadOnly reports whether the archive rejects mutating operations.
func (a *Archive) ReadOnly() bool { return a.readOnly }

// Label returns the trailer's current label, if any.
func (a *Archive) Label() *string { return a.label }

// LastModified returns the trailer's RFC-3339 last-modified timestamp.
func (a *Archive) LastModified() string { return a.lastModified }

// LayerCount returns the number of on-disk layers (not counting the
// writable buffer).
func (a *Archive) LayerCount() int { return len(a.layers) }

// Descriptor returns a copy of the i-th layer descriptor.
func (a *Archive) Descriptor(i int) trailer.LayerDescriptor {
	return a.layers[i]
}

// Descriptors returns a copy of the full descriptor list, in layer order.
func (a *Archive) Descriptors() []trailer.LayerDescriptor {
	out := make([]trailer.LayerDescriptor, len(a.layers))
	copy(out, a.layers)
	return out
}

// PendingWrites reports how many entries are staged in the writable buffer.
func (a *Archive) PendingWrites() int { return len(a.writable) }

// Warnings returns the non-fatal notices accumulated since Open/Create, such
// as a reserved opaque-whiteout marker encountered while decoding a layer
// (spec.md §9: MUST be ignored on read, SHOULD be warned about).
func (a *Archive) Warnings() []string {
	out := make([]string, len(a.warnings))
	copy(out, a.warnings)
	return out
}

func (a *Archive) recordOpaqueWarning(layerIndex int, path string) {
	key := fmt.Sprintf("%d:%s", layerIndex, path)
	if a.warnSeen == nil {
		a.warnSeen = map[string]bool{}
	}
	if a.warnSeen[key] {
		return
	}
	a.warnSeen[key] = true
	a.warnings = append(a.warnings, fmt.Sprintf("reserved opaque whiteout %q in layer %d ignored", path, layerIndex))
}

// Close releases the underlying file handle. It does not flush pending
// writes; callers must call Flush/Snapshot first.
func (a *Archive) Close() error {
	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}

func (a *Archive) requireWritable() error {
	if a.readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, a.path)
	}
	return nil
}
