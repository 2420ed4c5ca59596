package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "dev", "unknown"
	assert.Equal(t, "dev", Short())
	Commit = "1a2b3c"
	assert.Equal(t, "1a2b3c", Short())
	Version = "v1.2.0"
	assert.Equal(t, "v1.2.0", Short())
	assert.Contains(t, String(), "commit 1a2b3c")
}
