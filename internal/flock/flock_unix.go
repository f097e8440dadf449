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

//go:build unix

package flock

import "golang.org/x/sys/unix"

// Lock acquires an exclusive (or shared, if read-only callers want
// concurrent readers) advisory lock, blocking until it's available.
func (l *Lock) Lock(shared bool) error {
	how := unix.LOCK_EX
	if shared {
		how = unix.LOCK_SH
	}
	if err := unix.Flock(int(l.f.Fd()), how); err != nil {
		return err
	}
	l.shared = shared
	l.acquired = true
	return nil
}

// TryLock is like Lock but returns immediately with false instead of
// blocking if the lock is already held elsewhere.
func (l *Lock) TryLock(shared bool) (bool, error) {
	how := unix.LOCK_EX | unix.LOCK_NB
	if shared {
		how = unix.LOCK_SH | unix.LOCK_NB
	}
	if err := unix.Flock(int(l.f.Fd()), how); err != nil {
		if err == unix.EWOULDBLOCK {
			return false, nil
		}
		return false, err
	}
	l.shared = shared
	l.acquired = true
	return true, nil
}

func (l *Lock) unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
