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
	"strings"

	"github.com/tcow-dev/tcow/pkg/tario"
)

// ListMode selects how List enumerates a directory's children, per
// spec.md §4.6.
type ListMode int

const (
	// ListUnion merges the writable buffer and every on-disk layer
	// top-down, applying whiteout precedence: this is what "ls" shows.
	ListUnion ListMode = iota
	// ListSingleLayer returns only the entries physically present in one
	// named on-disk layer, whiteouts included, with no resolution.
	ListSingleLayer
	// ListAll reports every occurrence of each name from the writable
	// buffer and every on-disk layer, whiteouts included, each tagged with
	// its layer index and whether a higher layer shadows it, for
	// diagnostic listings.
	ListAll
)

// VisibleEntry is one resolved child of a directory, as returned by List.
type VisibleEntry struct {
	Entry tario.Entry

	// LayerIndex identifies which on-disk layer this occurrence came from,
	// populated by ListSingleLayer and ListAll. The writable buffer's
	// occurrences (ListAll only) carry the archive's on-disk layer count,
	// per spec.md §4.6's "W = L when present" convention.
	LayerIndex int

	// Whiteout is true when this occurrence is itself a whiteout marker
	// rather than a live entry.
	Whiteout bool

	// Hidden is true when a higher-priority layer already decided this
	// name (ListAll only): the occurrence is shadowed, not the one a
	// Union lookup would return.
	Hidden bool
}

func validatePath(p string) (string, error) {
	if strings.IndexByte(p, 0) >= 0 {
		return "", ErrInvalidPath
	}
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "", nil // root
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidPath
		}
	}
	return trimmed, nil
}

func dirOf(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

func baseOf(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return p
	}
	return p[i+1:]
}

// topDownLayers returns entry slices ordered topmost-first: the writable
// buffer, then each on-disk layer from newest to oldest.
func (a *Archive) topDownLayers() ([][]tario.Entry, error) {
	decoded, err := a.decodedLayers()
	if err != nil {
		return nil, err
	}
	out := make([][]tario.Entry, 0, len(decoded)+1)
	out = append(out, a.writable)
	for i := len(decoded) - 1; i >= 0; i-- {
		out = append(out, decoded[i].entries)
	}
	return out, nil
}

// findLastInLayer applies last-write-wins within a single layer's entry
// list and reports how (if at all) it affects path.
func findLastInLayer(entries []tario.Entry, path string) (entry tario.Entry, isWhiteout, found bool) {
	for _, e := range entries {
		if shadowed, ok := e.IsWhiteout(); ok {
			if joinPath(dirOf(e.Path), shadowed) == path {
				found, isWhiteout = true, true
			}
			continue
		}
		if e.Path == path {
			entry, found, isWhiteout = e, true, false
		}
	}
	return entry, isWhiteout, found
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Lookup resolves path through the writable buffer and every on-disk
// layer, topmost first, honoring whiteout precedence (spec.md §4.6).
func (a *Archive) Lookup(path string) (tario.Entry, bool, error) {
	clean, err := validatePath(path)
	if err != nil {
		return tario.Entry{}, false, err
	}
	layers, err := a.topDownLayers()
	if err != nil {
		return tario.Entry{}, false, err
	}
	for _, layer := range layers {
		entry, whiteout, found := findLastInLayer(layer, clean)
		if !found {
			continue
		}
		if whiteout {
			return tario.Entry{}, false, nil
		}
		return entry, true, nil
	}
	return tario.Entry{}, false, nil
}

// existsLower reports whether path has a live (non-whited-out) entry among
// the on-disk layers alone, ignoring the writable buffer. The CoW engine's
// writes do not call it: a copy-up needs no action beyond the write landing
// in the writable buffer, which shadows any lower occurrence.
func (a *Archive) existsLower(path string) (bool, error) {
	decoded, err := a.decodedLayers()
	if err != nil {
		return false, err
	}
	for i := len(decoded) - 1; i >= 0; i-- {
		_, whiteout, found := findLastInLayer(decoded[i].entries, path)
		if !found {
			continue
		}
		return !whiteout, nil
	}
	return false, nil
}

type dirListing struct {
	live      map[string]tario.Entry
	whiteouts map[string]bool
}

func (a *Archive) listUnion(dir string) (*dirListing, error) {
	layers, err := a.topDownLayers()
	if err != nil {
		return nil, err
	}
	decided := map[string]bool{}
	result := &dirListing{live: map[string]tario.Entry{}, whiteouts: map[string]bool{}}

	for _, layer := range layers {
		localLive := map[string]tario.Entry{}
		localWhiteout := map[string]bool{}

		for _, e := range layer {
			if shadowed, ok := e.IsWhiteout(); ok {
				if dirOf(e.Path) == dir {
					localWhiteout[shadowed] = true
					delete(localLive, shadowed)
				}
				continue
			}
			// A reserved opaque whiteout is v1-visible as a regular
			// zero-byte entry (spec.md §9): it is warned about elsewhere,
			// not hidden from listings.
			if dirOf(e.Path) == dir {
				base := baseOf(e.Path)
				localLive[base] = e
				delete(localWhiteout, base)
			}
		}

		for base, e := range localLive {
			if decided[base] {
				continue
			}
			decided[base] = true
			result.live[base] = e
		}
		for base := range localWhiteout {
			if decided[base] {
				continue
			}
			decided[base] = true
			result.whiteouts[base] = true
		}
	}
	return result, nil
}

// List enumerates the immediate children of dir according to mode.
// layerIndex is only consulted when mode is ListSingleLayer.
func (a *Archive) List(dir string, mode ListMode, layerIndex int) ([]VisibleEntry, error) {
	clean, err := validatePath(dir)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ListSingleLayer:
		entries, err := a.Entries(layerIndex)
		if err != nil {
			return nil, err
		}
		var out []VisibleEntry
		for _, e := range entries {
			if dirOf(e.Path) != clean {
				continue
			}
			out = append(out, VisibleEntry{Entry: e, LayerIndex: layerIndex})
		}
		return out, nil

	case ListUnion:
		listing, err := a.listUnion(clean)
		if err != nil {
			return nil, err
		}
		var out []VisibleEntry
		for _, e := range listing.live {
			out = append(out, VisibleEntry{Entry: e})
		}
		return out, nil

	case ListAll:
		return a.listAllLayers(clean)

	default:
		return nil, ErrInvalidPath
	}
}

// listAllLayers implements List's All mode (spec.md §4.6): every entry from
// every layer that lives directly under dir, tagged with the layer it came
// from and whether a higher-priority layer already decided that name.
// Layers are walked topmost-first, matching topDownLayers' resolution
// order, so the writable buffer's entries (if any) are tagged with layer
// index L (the on-disk layer count) per spec.md §4.6's "W = L when present"
// convention.
func (a *Archive) listAllLayers(dir string) ([]VisibleEntry, error) {
	decoded, err := a.decodedLayers()
	if err != nil {
		return nil, err
	}

	type indexedLayer struct {
		index   int
		entries []tario.Entry
	}
	ordered := make([]indexedLayer, 0, len(decoded)+1)
	ordered = append(ordered, indexedLayer{index: len(decoded), entries: a.writable})
	for i := len(decoded) - 1; i >= 0; i-- {
		ordered = append(ordered, indexedLayer{index: i, entries: decoded[i].entries})
	}

	decided := map[string]bool{}
	var out []VisibleEntry
	for _, layer := range ordered {
		localLive := map[string]tario.Entry{}
		localWhiteout := map[string]bool{}
		for _, e := range layer.entries {
			if shadowed, ok := e.IsWhiteout(); ok {
				if dirOf(e.Path) == dir {
					localWhiteout[shadowed] = true
				}
				continue
			}
			if dirOf(e.Path) == dir {
				localLive[baseOf(e.Path)] = e
			}
		}
		for base, e := range localLive {
			out = append(out, VisibleEntry{Entry: e, LayerIndex: layer.index, Hidden: decided[base]})
			decided[base] = true
		}
		for base := range localWhiteout {
			out = append(out, VisibleEntry{
				Entry:      tario.Entry{Path: joinPath(dir, base), Typeflag: tario.TypeRegular},
				LayerIndex: layer.index,
				Whiteout:   true,
				Hidden:     decided[base],
			})
			decided[base] = true
		}
	}
	return out, nil
}

// ResolveSubtree returns every live entry at or beneath root, resolved
// through the union of the writable buffer and all on-disk layers. root ==
// "" resolves the whole tree.
func (a *Archive) ResolveSubtree(root string) ([]tario.Entry, error) {
	clean, err := validatePath(root)
	if err != nil {
		return nil, err
	}
	all, err := a.resolveAllLive()
	if err != nil {
		return nil, err
	}
	if clean == "" {
		return all, nil
	}
	var out []tario.Entry
	for _, e := range all {
		if e.Path == clean || strings.HasPrefix(e.Path, clean+"/") {
			out = append(out, e)
		}
	}
	return out, nil
}
