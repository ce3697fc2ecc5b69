package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidColorHex(t *testing.T) {
	valid := []string{"#fff", "#FFF", "#4F86C6", "#000000", "#a1B2c3"}
	for _, s := range valid {
		assert.True(t, validColorHex(s), s)
	}
	invalid := []string{"", "#", "fff", "#ffff", "#12345", "#gggggg", "#12 456", "4F86C6#"}
	for _, s := range invalid {
		assert.False(t, validColorHex(s), s)
	}
}
