package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitelist(t *testing.T) {
	w := New()

	assert.False(t, w.Contains("abc0001234"))

	w.Add("abc0001234")
	assert.True(t, w.Contains("abc0001234"))
	assert.False(t, w.Contains("zzz0001234"), "other slugs stay blocked")

	w.Remove("abc0001234")
	assert.False(t, w.Contains("abc0001234"), "entries are one-time use")

	// removing an absent slug is a no-op
	w.Remove("abc0001234")
}
