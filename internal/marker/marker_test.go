package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "### 42 ###", Format(42))
	assert.Equal(t, "### 0 ###", Format(0))
	assert.Equal(t, "### 18446744073709551615 ###", Format(18446744073709551615))
}

func TestContains(t *testing.T) {
	desc := "Some convoy details\n\n### 42 ###"

	assert.True(t, Contains(desc, 42))
	assert.False(t, Contains(desc, 4))
	assert.False(t, Contains(desc, 420))
	assert.False(t, Contains("", 42))
}

func TestContainsAnywhereInDescription(t *testing.T) {
	assert.True(t, Contains("prefix ### 7 ### suffix", 7))
}
