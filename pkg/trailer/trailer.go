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

// Package trailer implements the structured index record (the "trailer")
// that terminates every .tcow file, and its 16-byte footer.
//
// The trailer is encoded as CBOR: a compact, self-describing binary map
// codec, matching spec.md's requirement for deterministic field order and
// explicit nulls for absent optionals. See DESIGN.md for why CBOR was
// chosen over JSON/gob.
package trailer

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Kind tags whether a layer is the format's Base layer or a Delta on top of
// it.
type Kind string

const (
	KindBase  Kind = "Base"
	KindDelta Kind = "Delta"
)

// FormatVersion is the only trailer schema version this implementation
// understands.
const FormatVersion = 1

// LayerDescriptor is the per-layer metadata held in the trailer.
type LayerDescriptor struct {
	Offset    uint64  `cbor:"offset"`
	Size      uint64  `cbor:"size"`
	Kind      Kind    `cbor:"kind"`
	Digest    *string `cbor:"digest"`
	CreatedAt string  `cbor:"created_at"`
}

// Trailer is the structured index record at the tail of a .tcow file.
type Trailer struct {
	Version      uint16            `cbor:"version"`
	Layers       []LayerDescriptor `cbor:"layers"`
	LastModified string            `cbor:"last_modified"`
	Label        *string           `cbor:"label"`
}

// ErrDecode wraps any failure to parse a trailer record.
var ErrDecode = fmt.Errorf("trailer: decode failed")

// encMode emits struct fields in declaration order (matching the field
// names and order fixed by spec.md §3) and encodes nil pointers as explicit
// CBOR null rather than omitting the key, so the schema shape is stable
// across encodes regardless of which optionals are present.
var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Sort = cbor.SortNone
	m, err := opts.EncMode()
	if err != nil {
		panic(err) // fixed, valid options; cannot fail
	}
	return m
}()

// Encode serializes t deterministically: field order fixed by struct
// declaration, absent optionals written as explicit null.
func Encode(t Trailer) ([]byte, error) {
	b, err := encMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("trailer: encode: %w", err)
	}
	return b, nil
}

// Decode parses trailer bytes. Optional fields may be present-but-null or
// absent entirely; both decode to a nil pointer.
func Decode(b []byte) (Trailer, error) {
	var t Trailer
	if err := cbor.Unmarshal(b, &t); err != nil {
		return Trailer{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return t, nil
}
