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

// Package flock provides advisory file locking for .tcow archives: at most
// one writer may hold the lock at a time, so two CLI invocations (or two
// library users) can't interleave flushes against the same file.
package flock

import "os"

// Lock holds an advisory lock on a file for the life of the process, or
// until Close is called.
type Lock struct {
	f        *os.File
	shared   bool
	acquired bool
}

// New returns a Lock bound to path without acquiring it. The file is
// created if it does not already exist.
func New(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Close releases the lock, if held, and closes the underlying file handle.
func (l *Lock) Close() error {
	if l.acquired {
		_ = l.unlock()
	}
	return l.f.Close()
}
