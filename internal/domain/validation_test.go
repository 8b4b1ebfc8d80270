package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.domain.org"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("nope"))
	assert.False(t, ValidEmail("user@"))
	assert.False(t, ValidEmail("@example.com"))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("abcdefg1"))
	assert.False(t, ValidPassword("short1"))
	assert.False(t, ValidPassword("allletters"))
	assert.False(t, ValidPassword("12345678"))
}

func TestValidPostTitle(t *testing.T) {
	assert.True(t, ValidPostTitle("Old surfboard"))
	assert.False(t, ValidPostTitle("ab"))
	assert.False(t, ValidPostTitle(strings.Repeat("x", 121)))
	// runes, not bytes
	assert.True(t, ValidPostTitle(strings.Repeat("я", 120)))
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(0))
	assert.True(t, ValidPrice(25000))
	assert.False(t, ValidPrice(-1))
	assert.False(t, ValidPrice(10_000_001))
}

func TestValidRating(t *testing.T) {
	for r := 1; r <= 5; r++ {
		assert.True(t, ValidRating(r))
	}
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}
