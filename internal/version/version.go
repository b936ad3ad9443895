// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in output and audit logs.
const Name = "ja-redact"

// Version information set at link time with -ldflags "-X".
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s, tokenizer: kagome %s)",
		Name, Version, GitCommit, BuildDate, GoVersion, Platform, tokenizerVersion())
}

// Short returns just the version number
func Short() string {
	return Version
}

// Full returns detailed version information
func Full() map[string]string {
	return map[string]string{
		"name":      Name,
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
		"tokenizer": tokenizerVersion(),
	}
}

// tokenizerVersion reports the linked kagome module version.
func tokenizerVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == "github.com/ikawaha/kagome/v2" {
			return dep.Version
		}
	}
	return "unknown"
}
