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

package cli

import (
	"errors"

	"github.com/tcow-dev/tcow/pkg/archive"
	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

// ExitCode maps a command error to the process exit code the spec assigns
// to its error category:
//
//	0  success
//	1  generic error: I/O, bad argument or path, illegal archive state
//	2  not a valid .tcow (structural decode failure)
//	3  virtual path not found
//	4  integrity error (digest mismatch)
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, archive.ErrNotFound):
		return 3
	case errors.Is(err, archive.ErrIntegrity):
		return 4
	case errors.Is(err, archive.ErrInvalidPath),
		errors.Is(err, archive.ErrReadOnly),
		errors.Is(err, archive.ErrAlreadyOpen),
		errors.Is(err, tario.ErrNameTooLong):
		return 1
	case errors.Is(err, archive.ErrBadHeaderMagic),
		errors.Is(err, archive.ErrUnsupportedVersion),
		errors.Is(err, archive.ErrTooShort),
		errors.Is(err, archive.ErrTrailerBoundsInvalid),
		errors.Is(err, trailer.ErrBadFooterMagic),
		errors.Is(err, trailer.ErrDecode),
		errors.Is(err, tario.ErrBadChecksum),
		errors.Is(err, tario.ErrTarParse):
		return 2
	default:
		return 1
	}
}
