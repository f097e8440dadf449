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
	"io"
	"os"
	"time"

	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/tdigest"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

const (
	// HeaderSize is the fixed size, in bytes, of the leading file header.
	HeaderSize = 16

	// FormatVersion is the only version this implementation writes, and the
	// only one it accepts on Open.
	FormatVersion uint16 = 1
)

// HeaderMagic is the 4-byte magic at the start of every .tcow file.
var HeaderMagic = [4]byte{'T', 'C', 'O', 'W'}

// Header is the fixed 16-byte region at offset 0: magic, version, flags,
// and 8 reserved bytes.
type Header struct {
	Version uint16
	Flags   uint16
}

func encodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	copy(b[0:4], HeaderMagic[:])
	b[4] = byte(h.Version)
	b[5] = byte(h.Version >> 8)
	b[6] = byte(h.Flags)
	b[7] = byte(h.Flags >> 8)
	// b[8:16] reserved, left zero.
	return b
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTooShort
	}
	if string(b[0:4]) != string(HeaderMagic[:]) {
		return Header{}, ErrBadHeaderMagic
	}
	h := Header{
		Version: uint16(b[4]) | uint16(b[5])<<8,
		Flags:   uint16(b[6]) | uint16(b[7])<<8,
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}

// Open validates and loads an existing .tcow file at path, following the
// numbered procedure in spec.md §4.4:
//  1. read and validate the 16-byte header (magic, version)
//  2. read the 16-byte footer from the tail of the file
//  3. validate the footer's magic and that trailer_offset+trailer_len+16
//     falls exactly at EOF
//  4. read and decode the trailer at trailer_offset
//  5. adopt the trailer's layer descriptors as the live layer list
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	readOnly := false
	if err != nil {
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("archive: open %s: %w", path, err)
		}
		readOnly = true
	}

	a := newArchive(f, path, readOnly, opts)
	if err := a.load(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) load() error {
	size, err := a.f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("archive: seek: %w", err)
	}
	if size < HeaderSize+int64(trailer.FooterSize) {
		return ErrTooShort
	}

	hdrBuf := make([]byte, HeaderSize)
	if _, err := a.f.ReadAt(hdrBuf, 0); err != nil {
		return fmt.Errorf("archive: read header: %w", err)
	}
	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		return err
	}
	a.header = hdr

	ftrBuf := make([]byte, trailer.FooterSize)
	if _, err := a.f.ReadAt(ftrBuf, size-int64(trailer.FooterSize)); err != nil {
		return fmt.Errorf("archive: read footer: %w", err)
	}
	ftr, err := trailer.DecodeFooter(ftrBuf)
	if err != nil {
		return err
	}

	end := ftr.TrailerOffset + uint64(ftr.TrailerLen) + uint64(trailer.FooterSize)
	if ftr.TrailerOffset < HeaderSize || int64(end) != size {
		return ErrTrailerBoundsInvalid
	}

	trailerBuf := make([]byte, ftr.TrailerLen)
	if _, err := a.f.ReadAt(trailerBuf, int64(ftr.TrailerOffset)); err != nil {
		return fmt.Errorf("archive: read trailer: %w", err)
	}
	tr, err := trailer.Decode(trailerBuf)
	if err != nil {
		return fmt.Errorf("archive: decode trailer: %w", err)
	}
	if tr.Version != FormatVersion {
		return fmt.Errorf("%w: trailer version %d", ErrUnsupportedVersion, tr.Version)
	}
	if err := validateLayerDescriptors(tr.Layers, ftr.TrailerOffset); err != nil {
		return err
	}

	a.trailerOffset = ftr.TrailerOffset
	a.layers = tr.Layers
	a.lastModified = tr.LastModified
	a.label = tr.Label
	return nil
}

// validateLayerDescriptors enforces spec.md §4.4 step 5's offset continuity
// invariant: the first descriptor starts immediately after the header, each
// descriptor picks up exactly where the previous one ended, the first layer
// is a Base and every later one is a Delta, and the last descriptor's end
// lands exactly at trailerOffset. A trailer that satisfies its own footer
// bounds but describes overlapping or out-of-order layers is rejected here
// rather than left to surface as garbage from a later LayerBytes read.
func validateLayerDescriptors(layers []trailer.LayerDescriptor, trailerOffset uint64) error {
	if len(layers) == 0 {
		return nil
	}
	if layers[0].Offset != HeaderSize {
		return ErrTrailerBoundsInvalid
	}
	if layers[0].Kind != trailer.KindBase {
		return ErrTrailerBoundsInvalid
	}
	want := layers[0].Offset
	for i, d := range layers {
		if d.Offset != want {
			return ErrTrailerBoundsInvalid
		}
		if i > 0 && d.Kind != trailer.KindDelta {
			return ErrTrailerBoundsInvalid
		}
		want = d.Offset + d.Size
	}
	if want != trailerOffset {
		return ErrTrailerBoundsInvalid
	}
	return nil
}

// Create initializes a new, empty .tcow archive at path: a 16-byte header,
// one empty Base layer (the 1024-byte end-of-archive marker), then the
// trailer and footer. Create fails if a file already exists at path.
func Create(path string, opts ...Option) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("archive: create %s: %w", path, err)
	}

	a := newArchive(f, path, false, opts)
	a.header = Header{Version: FormatVersion}
	a.layers = nil
	a.lastModified = a.clock.Now().Format(time.RFC3339)
	a.label = nil

	headerBytes := encodeHeader(a.header)
	if _, err := f.Write(headerBytes[:]); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("archive: write header: %w", err)
	}
	a.trailerOffset = HeaderSize

	// A freshly created archive gets one empty Base layer immediately
	// rather than deferring layer creation to the first write: the first
	// Flush always produces a Delta layer on top of it (spec.md's Open
	// Question on empty-archive semantics).
	emptyBase, err := tario.Encode(nil)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("archive: encode empty base layer: %w", err)
	}
	if _, err := a.appendLayer(trailer.KindBase, emptyBase); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return a, nil
}

// writeTrailerAndFooter encodes the current trailer state and appends
// trailer+footer starting at off, which must already be the file's current
// length. It truncates the file to end right after the new footer; it does
// not fsync, which callers own.
func (a *Archive) writeTrailerAndFooter(off uint64) error {
	tr := trailer.Trailer{
		Version:      FormatVersion,
		Layers:       a.layers,
		LastModified: a.lastModified,
		Label:        a.label,
	}
	trBuf, err := trailer.Encode(tr)
	if err != nil {
		return fmt.Errorf("archive: encode trailer: %w", err)
	}
	if _, err := a.f.WriteAt(trBuf, int64(off)); err != nil {
		return fmt.Errorf("archive: write trailer: %w", err)
	}

	ftr := trailer.EncodeFooter(trailer.Footer{
		TrailerOffset: off,
		TrailerLen:    uint32(len(trBuf)),
	})
	if _, err := a.f.WriteAt(ftr[:], int64(off)+int64(len(trBuf))); err != nil {
		return fmt.Errorf("archive: write footer: %w", err)
	}

	newEnd := off + uint64(len(trBuf)) + uint64(trailer.FooterSize)
	if err := a.f.Truncate(int64(newEnd)); err != nil {
		return fmt.Errorf("archive: truncate: %w", err)
	}
	a.trailerOffset = off
	return nil
}

// appendLayer truncates the file at the current trailer offset (dropping
// the old trailer+footer), writes raw tar-encoded layer bytes there, records
// a new descriptor for it, writes the trailer+footer after the new layer,
// and fsyncs. This is the append-flush procedure of spec.md §4.7: the old
// trailer is never left on disk past this call.
func (a *Archive) appendLayer(kind trailer.Kind, raw []byte) (trailer.LayerDescriptor, error) {
	off := a.trailerOffset
	if err := a.f.Truncate(int64(off)); err != nil {
		return trailer.LayerDescriptor{}, fmt.Errorf("archive: truncate: %w", err)
	}
	if _, err := a.f.WriteAt(raw, int64(off)); err != nil {
		return trailer.LayerDescriptor{}, fmt.Errorf("archive: write layer: %w", err)
	}

	digest := tdigest.Sum(raw)
	now := a.clock.Now().Format(time.RFC3339)
	desc := trailer.LayerDescriptor{
		Offset:    off,
		Size:      uint64(len(raw)),
		Kind:      kind,
		Digest:    &digest,
		CreatedAt: now,
	}

	a.layers = append(a.layers, desc)
	a.lastModified = now

	if err := a.writeTrailerAndFooter(off + uint64(len(raw))); err != nil {
		return trailer.LayerDescriptor{}, err
	}
	if err := a.f.Sync(); err != nil {
		return trailer.LayerDescriptor{}, fmt.Errorf("archive: fsync: %w", err)
	}
	return desc, nil
}

// readLayerRaw reads the raw tar bytes for layer i directly off disk.
func (a *Archive) readLayerRaw(i int) ([]byte, error) {
	d := a.layers[i]
	buf := make([]byte, d.Size)
	if _, err := a.f.ReadAt(buf, int64(d.Offset)); err != nil {
		return nil, fmt.Errorf("archive: read layer %d: %w", i, err)
	}
	return buf, nil
}
