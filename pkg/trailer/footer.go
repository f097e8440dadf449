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

package trailer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FooterSize is the fixed size, in bytes, of the footer at the end of every
// .tcow file.
const FooterSize = 16

// FooterMagic is the 4-byte magic terminating every .tcow file.
var FooterMagic = [4]byte{'W', '0', 'C', 'T'}

// ErrBadFooterMagic is returned when the last 4 bytes of a file do not
// match FooterMagic.
var ErrBadFooterMagic = errors.New("trailer: bad footer magic")

// Footer locates the trailer within the file: trailer_offset + trailer_len
// + FooterSize must equal the file size.
type Footer struct {
	TrailerOffset uint64
	TrailerLen    uint32
}

// EncodeFooter writes f as the fixed 16-byte footer layout: trailer_offset
// (u64 LE), trailer_len (u32 LE), magic.
func EncodeFooter(f Footer) [FooterSize]byte {
	var b [FooterSize]byte
	binary.LittleEndian.PutUint64(b[0:8], f.TrailerOffset)
	binary.LittleEndian.PutUint32(b[8:12], f.TrailerLen)
	copy(b[12:16], FooterMagic[:])
	return b
}

// DecodeFooter parses a 16-byte footer. It fails if the magic does not
// match.
func DecodeFooter(b []byte) (Footer, error) {
	if len(b) != FooterSize {
		return Footer{}, fmt.Errorf("trailer: footer must be %d bytes, got %d", FooterSize, len(b))
	}
	if string(b[12:16]) != string(FooterMagic[:]) {
		return Footer{}, ErrBadFooterMagic
	}
	return Footer{
		TrailerOffset: binary.LittleEndian.Uint64(b[0:8]),
		TrailerLen:    binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}
