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

package trailer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tcow-dev/tcow/pkg/trailer"
)

func TestFooterRoundTrip(t *testing.T) {
	f := trailer.Footer{TrailerOffset: 4096, TrailerLen: 128}
	b := trailer.EncodeFooter(f)
	require.Len(t, b, trailer.FooterSize)

	got, err := trailer.DecodeFooter(b[:])
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestFooterBadMagic(t *testing.T) {
	b := trailer.EncodeFooter(trailer.Footer{TrailerOffset: 1, TrailerLen: 1})
	b[15] = 'X'
	_, err := trailer.DecodeFooter(b[:])
	require.ErrorIs(t, err, trailer.ErrBadFooterMagic)
}

func TestTrailerRoundTripWithOptionals(t *testing.T) {
	digest := "abc123"
	label := "release-1"
	in := trailer.Trailer{
		Version: trailer.FormatVersion,
		Layers: []trailer.LayerDescriptor{
			{Offset: 16, Size: 1024, Kind: trailer.KindBase, Digest: &digest, CreatedAt: "2026-01-01T00:00:00Z"},
			{Offset: 1040, Size: 2048, Kind: trailer.KindDelta, Digest: nil, CreatedAt: "2026-01-02T00:00:00Z"},
		},
		LastModified: "2026-01-02T00:00:00Z",
		Label:        &label,
	}

	b, err := trailer.Encode(in)
	require.NoError(t, err)

	out, err := trailer.Decode(b)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTrailerAbsentOptionalsDecodeAsNil(t *testing.T) {
	in := trailer.Trailer{
		Version:      trailer.FormatVersion,
		Layers:       []trailer.LayerDescriptor{{Offset: 16, Size: 1024, Kind: trailer.KindBase, CreatedAt: "2026-01-01T00:00:00Z"}},
		LastModified: "2026-01-01T00:00:00Z",
	}
	b, err := trailer.Encode(in)
	require.NoError(t, err)

	out, err := trailer.Decode(b)
	require.NoError(t, err)
	require.Nil(t, out.Label)
	require.Nil(t, out.Layers[0].Digest)
}

func TestTrailerDeterministicEncoding(t *testing.T) {
	in := trailer.Trailer{
		Version:      trailer.FormatVersion,
		Layers:       []trailer.LayerDescriptor{{Offset: 16, Size: 1024, Kind: trailer.KindBase, CreatedAt: "2026-01-01T00:00:00Z"}},
		LastModified: "2026-01-01T00:00:00Z",
	}
	b1, err := trailer.Encode(in)
	require.NoError(t, err)
	b2, err := trailer.Encode(in)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
