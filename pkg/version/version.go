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

// Package version exposes the tcow module's build version, for embedding
// in "tcow info" output and log lines.
package version

import (
	"runtime/debug"
	"sync"
)

var once sync.Once
var tcowVersion = "unknown"

const modulePath = "github.com/tcow-dev/tcow"

// TcowVersion returns the version of the tcow module used in the current
// build, resolved from the binary's embedded build info.
func TcowVersion() string {
	once.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if bi.Main.Path == modulePath && bi.Main.Version != "" {
			tcowVersion = bi.Main.Version
			return
		}
		for _, d := range bi.Deps {
			if d.Path != modulePath {
				continue
			}
			tcowVersion = d.Version
			if d.Replace != nil && d.Replace.Path == modulePath {
				tcowVersion = d.Replace.Version
			}
			break
		}
	})
	return tcowVersion
}
