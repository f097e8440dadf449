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

package tdigest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tcow-dev/tcow/pkg/tdigest"
)

func TestSumKnownVector(t *testing.T) {
	// SHA-256("") per FIPS 180-4 test vectors.
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", tdigest.Sum(nil))
}

func TestVerify(t *testing.T) {
	data := []byte("hello world\n")
	sum := tdigest.Sum(data)
	require.True(t, tdigest.Verify(data, sum))
	require.False(t, tdigest.Verify(data, sum[:len(sum)-1]+"0"))
}
