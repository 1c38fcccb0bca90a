// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// BuildInfo identifies the running psafecache binary. The values are set
// through linker flags; unset ones read "N/A".
type BuildInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// NewBuildInfo fills blanks with "N/A".
func NewBuildInfo(version, date, commit string) BuildInfo {
	return BuildInfo{Version: orNA(version), Date: orNA(date), Commit: orNA(commit)}
}

// String is the text printed by the version command.
func (b BuildInfo) String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", b.Version, b.Date, b.Commit)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
