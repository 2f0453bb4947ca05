package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomString(t *testing.T) {
	got := RandomString(10)
	assert.Len(t, got, 10)
	for _, r := range got {
		assert.Contains(t, alphanumeric, string(r))
	}

	assert.NotEqual(t, RandomString(10), RandomString(10))
	assert.Empty(t, RandomString(0))
}

func TestRandomTag(t *testing.T) {
	got := RandomTag(8)
	assert.Len(t, got, 8)
	assert.Equal(t, strings.ToUpper(got), got)
}
