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
	"os"
	"sort"
	"time"

	"github.com/tcow-dev/tcow/pkg/tario"
	"github.com/tcow-dev/tcow/pkg/tdigest"
	"github.com/tcow-dev/tcow/pkg/trailer"
)

// Snapshot force-flushes the writable buffer into a new Delta layer, even
// if nothing is staged, so every Snapshot call produces a layer boundary a
// caller can point to (spec.md §4.8). label, if non-empty, replaces the
// trailer's label.
func (a *Archive) Snapshot(label string) (trailer.LayerDescriptor, error) {
	if err := a.requireWritable(); err != nil {
		return trailer.LayerDescriptor{}, err
	}
	if label != "" {
		a.label = &label
	}
	desc, err := a.flushAs(trailer.KindDelta)
	if err != nil {
		return trailer.LayerDescriptor{}, err
	}
	if desc != nil {
		return *desc, nil
	}
	// Nothing was staged: flush an empty layer anyway so Snapshot always
	// produces one, per spec.md's force-flush requirement.
	raw, err := tario.Encode(nil)
	if err != nil {
		return trailer.LayerDescriptor{}, fmt.Errorf("archive: encode empty layer: %w", err)
	}
	return a.appendLayer(trailer.KindDelta, raw)
}

// CompactResult reports what a Compact call did or, for a dry run, would
// do.
type CompactResult struct {
	BytesBefore int64
	BytesAfter  int64
	EntryCount  int
	DryRun      bool
}

// Compact rewrites the archive down to a single Base layer holding the
// union-resolved, path-sorted view of every currently visible entry, per
// spec.md §4.8. If dryRun is true, no bytes are written; the result
// reports what compaction would produce. If inPlace is false and outPath
// names a file other than a.path, the rewrite goes to outPath, leaving the
// open archive untouched; otherwise (inPlace true, or outPath empty or equal
// to a.path) the open archive is rewritten in place.
func (a *Archive) Compact(outPath string, inPlace, dryRun bool) (CompactResult, error) {
	live, err := a.resolveAllLive()
	if err != nil {
		return CompactResult{}, err
	}
	sort.Slice(live, func(i, j int) bool { return live[i].Path < live[j].Path })

	raw, err := tario.Encode(live)
	if err != nil {
		return CompactResult{}, fmt.Errorf("archive: encode compacted layer: %w", err)
	}

	before, err := a.currentFileSize()
	if err != nil {
		return CompactResult{}, err
	}
	after := int64(HeaderSize) + int64(len(raw)) + estimateTrailerSize(1)

	result := CompactResult{BytesBefore: before, BytesAfter: after, EntryCount: len(live), DryRun: dryRun}
	if dryRun {
		return result, nil
	}

	if inPlace || outPath == "" || outPath == a.path {
		if err := a.requireWritable(); err != nil {
			return CompactResult{}, err
		}
		if err := a.rewriteInPlace(raw); err != nil {
			return CompactResult{}, err
		}
		actualAfter, err := a.currentFileSize()
		if err != nil {
			return CompactResult{}, err
		}
		result.BytesAfter = actualAfter
		return result, nil
	}

	if err := a.writeCompactedCopy(outPath, raw); err != nil {
		return CompactResult{}, err
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return CompactResult{}, fmt.Errorf("archive: stat %s: %w", outPath, err)
	}
	result.BytesAfter = info.Size()
	return result, nil
}

func (a *Archive) resolveAllLive() ([]tario.Entry, error) {
	layers, err := a.topDownLayers()
	if err != nil {
		return nil, err
	}
	decided := map[string]bool{}
	var live []tario.Entry

	for _, layer := range layers {
		localLive := map[string]tario.Entry{}
		localOrder := []string{}
		localDead := map[string]bool{}
		for _, e := range layer {
			if shadowed, ok := e.IsWhiteout(); ok {
				target := joinPath(dirOf(e.Path), shadowed)
				localDead[target] = true
				delete(localLive, target)
				continue
			}
			// A reserved opaque whiteout is v1-visible as a regular
			// zero-byte entry (spec.md §9), not hidden from the resolved
			// tree.
			if _, exists := localLive[e.Path]; !exists {
				localOrder = append(localOrder, e.Path)
			}
			localLive[e.Path] = e
			delete(localDead, e.Path)
		}
		for _, p := range localOrder {
			if decided[p] {
				continue
			}
			decided[p] = true
			live = append(live, localLive[p])
		}
		for p := range localDead {
			decided[p] = true
		}
	}
	return live, nil
}

func (a *Archive) currentFileSize() (int64, error) {
	info, err := a.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("archive: stat: %w", err)
	}
	return info.Size(), nil
}

// estimateTrailerSize is a rough byte estimate used only for dry-run
// reporting; the real size is whatever the CBOR encoder produces.
func estimateTrailerSize(layerCount int) int64 {
	const perLayer = 96
	const fixed = 64
	return int64(fixed+perLayer*layerCount) + int64(trailer.FooterSize)
}

func (a *Archive) rewriteInPlace(compactedRaw []byte) error {
	if _, err := a.f.WriteAt(compactedRaw, HeaderSize); err != nil {
		return fmt.Errorf("archive: write compacted layer: %w", err)
	}
	digest := tdigest.Sum(compactedRaw)
	now := a.clock.Now().Format(time.RFC3339)
	a.layers = []trailer.LayerDescriptor{{
		Offset:    HeaderSize,
		Size:      uint64(len(compactedRaw)),
		Kind:      trailer.KindBase,
		Digest:    &digest,
		CreatedAt: now,
	}}
	a.lastModified = now
	if err := a.writeTrailerAndFooter(HeaderSize + uint64(len(compactedRaw))); err != nil {
		return err
	}
	a.writable = nil
	return a.f.Sync()
}

// writeCompactedCopy writes a brand new archive at outPath containing only
// the single compacted Base layer, leaving the currently open archive and
// its file untouched.
func (a *Archive) writeCompactedCopy(outPath string, compactedRaw []byte) error {
	out, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", outPath, err)
	}
	defer out.Close()

	headerBytes := encodeHeader(Header{Version: FormatVersion})
	if _, err := out.Write(headerBytes[:]); err != nil {
		return fmt.Errorf("archive: write header: %w", err)
	}
	if _, err := out.Write(compactedRaw); err != nil {
		return fmt.Errorf("archive: write compacted layer: %w", err)
	}

	digest := tdigest.Sum(compactedRaw)
	now := a.clock.Now().Format(time.RFC3339)
	tr := trailer.Trailer{
		Version: FormatVersion,
		Layers: []trailer.LayerDescriptor{{
			Offset:    HeaderSize,
			Size:      uint64(len(compactedRaw)),
			Kind:      trailer.KindBase,
			Digest:    &digest,
			CreatedAt: now,
		}},
		LastModified: now,
		Label:        a.label,
	}
	trBuf, err := trailer.Encode(tr)
	if err != nil {
		return fmt.Errorf("archive: encode trailer: %w", err)
	}
	trailerOffset := uint64(HeaderSize) + uint64(len(compactedRaw))
	if _, err := out.Write(trBuf); err != nil {
		return fmt.Errorf("archive: write trailer: %w", err)
	}
	footer := trailer.EncodeFooter(trailer.Footer{TrailerOffset: trailerOffset, TrailerLen: uint32(len(trBuf))})
	if _, err := out.Write(footer[:]); err != nil {
		return fmt.Errorf("archive: write footer: %w", err)
	}
	return out.Sync()
}

// VerifyResult reports the outcome of re-hashing every on-disk layer.
type VerifyResult struct {
	LayersChecked int
	Corrupt       []int // indices of layers whose stored digest didn't match
	Skipped       []int // indices of layers with no stored digest to check against
}

// OK reports whether every checked layer matched its stored digest. A
// skipped (digest-less) layer does not fail verification on its own
// (spec.md §4.8: "Layers without a digest are reported as skipped").
func (r VerifyResult) OK() bool { return len(r.Corrupt) == 0 }

// Verify re-hashes every on-disk layer's [offset, offset+size) region
// against its stored digest (spec.md §4.8, §8). If fixMissing is true, a
// layer whose descriptor has no stored digest gets one computed and
// written back via a trailer rewrite instead of being reported as skipped.
func (a *Archive) Verify(fixMissing bool) (VerifyResult, error) {
	result := VerifyResult{LayersChecked: len(a.layers)}
	fixed := false

	for i := range a.layers {
		ok, _, got, err := a.VerifyLayer(i)
		if err != nil {
			return VerifyResult{}, err
		}
		if ok {
			continue
		}
		if a.layers[i].Digest == nil {
			if fixMissing {
				gotCopy := got
				a.layers[i].Digest = &gotCopy
				fixed = true
				continue
			}
			result.Skipped = append(result.Skipped, i)
			continue
		}
		result.Corrupt = append(result.Corrupt, i)
	}

	if fixed {
		if err := a.requireWritable(); err != nil {
			return VerifyResult{}, err
		}
		if err := a.writeTrailerAndFooter(a.trailerOffset); err != nil {
			return VerifyResult{}, err
		}
		if err := a.f.Sync(); err != nil {
			return VerifyResult{}, fmt.Errorf("archive: fsync: %w", err)
		}
	}
	return result, nil
}
