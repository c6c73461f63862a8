// Package record implements the on-flash framing for one queue element:
// an 8-byte header, the payload, and an 8-byte footer that repeats the
// header. Bytes are packed explicitly with encoding/binary rather than
// reinterpreted from a Go struct layout, so the wire format is a chosen
// decision instead of an accident of host alignment (spec.md §9).
package record

import "encoding/binary"

// HeaderSize is the on-flash size in bytes of both the header and the footer.
const HeaderSize = 8

// Header is the {magic, id} pair written at the start and (repeated) at the
// end of every record. The zero value does not represent "erased" — erased
// flash reads back as 0xFF bytes, which IsErased reports on the raw bytes
// rather than Unmarshal returning a sentinel Header.
type Header struct {
	Magic uint32
	ID    uint32
}

// Marshal packs h into the first HeaderSize bytes of dst, little-endian.
// dst must be at least HeaderSize bytes long.
func (h Header) Marshal(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], h.Magic)
	binary.LittleEndian.PutUint32(dst[4:8], h.ID)
}

// Bytes returns h packed into a freshly allocated HeaderSize-byte slice.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	h.Marshal(buf)
	return buf
}

// Unmarshal reads a Header from the first HeaderSize bytes of src.
func Unmarshal(src []byte) Header {
	return Header{
		Magic: binary.LittleEndian.Uint32(src[0:4]),
		ID:    binary.LittleEndian.Uint32(src[4:8]),
	}
}

// IsErased reports whether src (at least HeaderSize bytes) is all 0xFF, the
// NOR erase value — i.e. no header has ever been written at this address.
func IsErased(src []byte) bool {
	for _, b := range src[:HeaderSize] {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// Complete reports whether a header/footer pair frames a complete record
// belonging to the queue identified by magic.
func Complete(header, footer Header, magic uint32) bool {
	return header == footer && header.Magic == magic
}
