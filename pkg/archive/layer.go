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

	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/tdigest"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

// LayerBytes returns the raw tar-encoded bytes for on-disk layer i, where 0
// is the oldest (Base) layer and LayerCount()-1 is the newest.
func (a *Archive) LayerBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(a.layers) {
		return nil, fmt.Errorf("archive: layer index %d out of range [0,%d)", i, len(a.layers))
	}
	return a.readLayerRaw(i)
}

// Entries decodes and returns every tar entry physically present in on-disk
// layer i, in on-disk order. This includes whiteout markers: callers that
// want union semantics should use Lookup/List instead.
func (a *Archive) Entries(i int) ([]tario.Entry, error) {
	raw, err := a.LayerBytes(i)
	if err != nil {
		return nil, err
	}
	entries, err := tario.DecodeAll(raw)
	if err != nil {
		return nil, fmt.Errorf("archive: decode layer %d: %w", i, err)
	}
	for _, e := range entries {
		if e.IsOpaqueWhiteout() {
			a.recordOpaqueWarning(i, e.Path)
		}
	}
	return entries, nil
}

// VerifyLayer re-hashes on-disk layer i and reports whether it matches its
// stored digest. A nil stored digest is treated as unverifiable and
// reported as a mismatch.
func (a *Archive) VerifyLayer(i int) (ok bool, want, got string, err error) {
	d := a.layers[i]
	raw, err := a.readLayerRaw(i)
	if err != nil {
		return false, "", "", err
	}
	got = tdigest.Sum(raw)
	if d.Digest == nil {
		return false, "", got, nil
	}
	want = *d.Digest
	return got == want, want, got, nil
}

// layerEntries pairs a decoded on-disk layer's kind with its entries, as
// returned by decodedLayers. decodedLayers decodes every on-disk layer anew
// on each call; nothing is cached between calls.
type layerEntries struct {
	kind    trailer.Kind
	entries []tario.Entry
}

func (a *Archive) decodedLayers() ([]layerEntries, error) {
	out := make([]layerEntries, len(a.layers))
	for i, d := range a.layers {
		entries, err := a.Entries(i)
		if err != nil {
			return nil, err
		}
		out[i] = layerEntries{kind: d.Kind, entries: entries}
	}
	return out, nil
}
