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

// Package tdigest computes the content digest used to verify tcow layers.
//
// The algorithm is fixed by the format (SHA-256 over the raw layer bytes);
// crypto/sha256 is used directly rather than through a third-party wrapper,
// matching how apko reaches for crypto/sha1 directly in pkg/tarfs/fs.go when
// the hash algorithm itself is a format contract, not a design choice.
package tdigest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the lowercase hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether data's SHA-256 digest equals want (a lowercase hex
// string, as produced by Sum).
func Verify(data []byte, want string) bool {
	return Sum(data) == want
}
