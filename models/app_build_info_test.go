// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppBuildInfo(t *testing.T) {
	info := NewAppBuildInfo("1.4.0", "2026-03-01", "abc123")

	assert.Equal(t, "1.4.0", info.BuildVersion())
	assert.Equal(t, "2026-03-01", info.BuildDate())
	assert.Equal(t, "abc123", info.BuildCommit())
	assert.True(t, info.Known())
	assert.Equal(t, "Build version: 1.4.0\nBuild date: 2026-03-01\nBuild commit: abc123", info.String())
}

func TestAppBuildInfo_Unknown(t *testing.T) {
	info := NewAppBuildInfo("", "", "")

	assert.Equal(t, "N/A", info.BuildVersion())
	assert.Equal(t, "N/A", info.BuildDate())
	assert.Equal(t, "N/A", info.BuildCommit())
	assert.False(t, info.Known())
}
