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

import "errors"

// Format, path, and integrity errors, per spec.md §7. Callers use
// errors.Is/errors.As; the CLI maps these to exit codes.
var (
	ErrBadHeaderMagic      = errors.New("archive: bad header magic")
	ErrUnsupportedVersion  = errors.New("archive: unsupported format version")
	ErrTooShort            = errors.New("archive: file too short to be a valid tcow archive")
	ErrTrailerBoundsInvalid = errors.New("archive: trailer bounds invalid")

	ErrNotFound  = errors.New("archive: path not found")
	ErrInvalidPath = errors.New("archive: invalid path")

	ErrIntegrity = errors.New("archive: layer digest mismatch")

	ErrReadOnly     = errors.New("archive: archive was opened read-only")
	ErrAlreadyOpen  = errors.New("archive: archive is already open")
)
