package style

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeHex canonicalizes a colour string to "#RRGGBB" (or "#RRGGBBAA" when
// the alpha channel is not opaque). Unparseable values are returned trimmed.
func NormalizeHex(s string) string {
	s = strings.TrimSpace(s)
	h := strings.TrimPrefix(s, "#")
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return s
	}
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	case 8:
		if strings.EqualFold(h[6:], "ff") {
			h = h[:6]
		}
	default:
		return s
	}
	return "#" + strings.ToUpper(h)
}

// HexWithAlpha renders a colour as "#RRGGBBAA", the form Grid 3 writes.
func HexWithAlpha(s string) string {
	n := NormalizeHex(s)
	if len(n) == 7 && n[0] == '#' {
		return n + "FF"
	}
	return n
}

// FromARGB converts a packed 32-bit ARGB integer (as stored by Snap) to hex.
func FromARGB(v int64) string {
	u := uint32(v)
	a := u >> 24
	rgb := fmt.Sprintf("#%06X", u&0xFFFFFF)
	if a == 0xFF {
		return rgb
	}
	return fmt.Sprintf("%s%02X", rgb, a)
}

// ToARGB packs a hex colour into a signed 32-bit ARGB integer. ok is false for
// values NormalizeHex cannot parse.
func ToARGB(s string) (int64, bool) {
	n := NormalizeHex(s)
	if !strings.HasPrefix(n, "#") {
		return 0, false
	}
	h := n[1:]
	alpha := uint64(0xFF)
	if len(h) == 8 {
		a, err := strconv.ParseUint(h[6:], 16, 8)
		if err != nil {
			return 0, false
		}
		alpha = a
		h = h[:6]
	}
	if len(h) != 6 {
		return 0, false
	}
	rgb, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, false
	}
	return int64(int32(uint32(alpha<<24 | rgb))), true
}
