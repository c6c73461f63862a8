package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{Magic: 0x47114711, ID: 63}
	buf := h.Bytes()
	assert.Len(t, buf, HeaderSize)
	assert.Equal(t, h, Unmarshal(buf))
}

func TestIsErased(t *testing.T) {
	erased := make([]byte, HeaderSize)
	for i := range erased {
		erased[i] = 0xFF
	}
	assert.True(t, IsErased(erased))

	written := Header{Magic: 1, ID: 1}.Bytes()
	assert.False(t, IsErased(written))
}

func TestComplete(t *testing.T) {
	h := Header{Magic: 0x08150815, ID: 7}
	assert.True(t, Complete(h, h, 0x08150815))
	assert.False(t, Complete(h, h, 0xDEADBEEF))

	footer := Header{Magic: 0x08150815, ID: 8}
	assert.False(t, Complete(h, footer, 0x08150815))
}
