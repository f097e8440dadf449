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

import "time"

// Clock is the external time source used to stamp layer creation times and
// trailer last-modified timestamps. Tests substitute a fixed clock;
// production code uses realClock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a Clock that always returns the same instant, useful for
// deterministic tests and reproducible compaction output.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
