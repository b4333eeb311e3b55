package bot

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestShortName(t *testing.T) {
	assert.Equal(t, "walk the dog", shortName("  walk the dog  ", 24))
	assert.Equal(t, "a very lon…", shortName("a very long task name", 11))

	// Multi-byte names are cut at rune boundaries, never mid-sequence.
	got := shortName("позвонить маме вечером", 12)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "позвонить м…", got)
}
