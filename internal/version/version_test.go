package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, ApplicationName, info.Application)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, runtime.GOOS)
	assert.Contains(t, info.Platform, runtime.GOARCH)
}

func TestString(t *testing.T) {
	s := String()
	assert.True(t, strings.HasPrefix(s, ApplicationName+" version "), s)
}

func TestShort(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()

	Version = "1.0.0"
	Commit = "unknown"
	assert.Equal(t, "1.0.0", Short())

	Commit = "0123456789abcdef"
	assert.Equal(t, "1.0.0 (01234567)", Short())
	assert.Contains(t, String(), "commit: 01234567")
}

func TestUserAgent(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "2.1.0"
	assert.Equal(t, "kinoteka/2.1.0", UserAgent())
}
