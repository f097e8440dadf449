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

//go:build !unix

package flock

// Lock is a best-effort no-op on platforms without flock(2): the CLI still
// functions, just without cross-process exclusion.
func (l *Lock) Lock(shared bool) error {
	l.shared = shared
	l.acquired = true
	return nil
}

// TryLock always succeeds on non-unix platforms.
func (l *Lock) TryLock(shared bool) (bool, error) {
	l.shared = shared
	l.acquired = true
	return true, nil
}

func (l *Lock) unlock() error {
	return nil
}
