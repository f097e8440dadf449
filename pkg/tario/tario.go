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

// Package tario implements a minimal, hand-rolled POSIX ustar encoder and
// decoder for tcow layers.
//
// tcow layers are not re-encodable through archive/tar: the on-disk layout
// (including the checksum-as-spaces convention and the exact zero-padding of
// the end-of-archive marker) is part of the tcow format contract, not an
// implementation detail, so this package controls every byte itself.
package tario

import "errors"

const (
	blockSize = 512

	nameSize     = 100
	modeSize     = 8
	uidSize      = 8
	gidSize      = 8
	sizeSize     = 12
	mtimeSize    = 12
	chksumSize   = 8
	linknameSize = 100
	magicSize    = 6
	versionSize  = 2
	unameSize    = 32
	gnameSize    = 32
	devmajorSize = 8
	devminorSize = 8
	prefixSize   = 155
	padSize      = 12

	ustarMagic   = "ustar\x00"
	ustarVersion = "00"

	// WhiteoutPrefix marks a basename as a deletion marker for its sibling.
	WhiteoutPrefix = ".wh."
	// OpaqueWhiteoutName is reserved by spec and ignored (with a warning) on read.
	OpaqueWhiteoutName = ".wh..wh..opq"
)

// Typeflag values this format recognizes. Anything else on decode is an error.
const (
	TypeRegular byte = '0'
	TypeDir     byte = '5'
)

var (
	// ErrNameTooLong is returned when a path cannot fit into the ustar
	// name+prefix fields (155+100 bytes, joined by '/').
	ErrNameTooLong = errors.New("tario: name too long for ustar format")
	// ErrBadChecksum is returned when a decoded header's checksum field does
	// not match the recomputed checksum over the raw header bytes.
	ErrBadChecksum = errors.New("tario: header checksum mismatch")
	// ErrTarParse is returned for any other structural decode failure:
	// truncated content, malformed octal fields, unsupported typeflag.
	ErrTarParse = errors.New("tario: malformed tar stream")
)

// Entry is one file within a layer, as described in spec.md §3.
type Entry struct {
	Path     string
	Mode     uint32
	UID      uint32
	GID      uint32
	Size     uint64
	Mtime    int64
	Typeflag byte
	Uname    string
	Gname    string
	Content  []byte
}

// IsWhiteout reports whether the entry's basename marks its sibling deleted:
// basename == ".wh." + b', size 0, typeflag regular.
func (e Entry) IsWhiteout() (shadowedBasename string, ok bool) {
	if e.Typeflag != TypeRegular || e.Size != 0 {
		return "", false
	}
	_, base := splitPath(e.Path)
	if base == OpaqueWhiteoutName {
		return "", false
	}
	if len(base) > len(WhiteoutPrefix) && base[:len(WhiteoutPrefix)] == WhiteoutPrefix {
		return base[len(WhiteoutPrefix):], true
	}
	return "", false
}

// IsOpaqueWhiteout reports whether the entry is the reserved
// ".wh..wh..opq" marker, which v1 must ignore (treat as a regular entry)
// but should surface as a warning to callers that asked for one.
func (e Entry) IsOpaqueWhiteout() bool {
	_, base := splitPath(e.Path)
	return base == OpaqueWhiteoutName
}

// splitPath splits a normalized path into (parent, basename). parent is ""
// for root-level entries.
func splitPath(p string) (parent, base string) {
	i := -1
	for j := 0; j < len(p); j++ {
		if p[j] == '/' {
			i = j
		}
	}
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

// WhiteoutPath returns the tar path of the whiteout entry that hides basename
// `name` inside `parent` ("" for root).
func WhiteoutPath(parent, name string) string {
	if parent == "" {
		return WhiteoutPrefix + name
	}
	return parent + "/" + WhiteoutPrefix + name
}
