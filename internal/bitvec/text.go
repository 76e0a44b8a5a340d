package bitvec

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const hexDigits = "0123456789abcdef"

// String renders the vector as '0'/'1' characters, most significant bit
// (index Len-1) first.
func (v *Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.bitCount)
	for i := v.bitCount - 1; i >= 0; i-- {
		if v.buf[i>>3]&(1<<(i&7)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Parse reads the binary form produced by String.
func Parse(s string) (*Vector, error) {
	v := &Vector{}
	if err := v.setBinary(s); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vector) setBinary(s string) error {
	n := len(s)
	for i := 0; i < n; i++ {
		if s[i] != '0' && s[i] != '1' {
			return fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidText, s[i], i)
		}
	}
	v.SetBitCount(n)
	for i := 0; i < n; i++ {
		if s[i] == '1' {
			bit := n - 1 - i
			v.buf[bit>>3] |= 1 << (bit & 7)
		}
	}
	return nil
}

// Hex renders the vector as two lowercase hex digits per byte, most
// significant byte first. Bits past Len in the leading byte print as zero.
func (v *Vector) Hex() string {
	return v.hex(hexDigits)
}

func (v *Vector) hex(digits string) string {
	n := byteCount(v.bitCount)
	out := make([]byte, 0, 2*n)
	for i := n - 1; i >= 0; i-- {
		b := v.buf[i]
		if i == n-1 {
			b &= v.lastByteMask()
		}
		out = append(out, digits[b>>4], digits[b&0x0f])
	}
	return string(out)
}

// ParseHex reads the form produced by Hex. A bitCount of zero or less takes
// every byte in full (len(s)*4 bits); otherwise the vector holds exactly
// bitCount bits and must fit in the bytes given.
func ParseHex(s string, bitCount int) (*Vector, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd hex length %d", ErrInvalidText, len(s))
	}
	n := len(s) / 2
	if bitCount <= 0 {
		bitCount = n * 8
	}
	if byteCount(bitCount) != n {
		return nil, fmt.Errorf("%w: %d hex bytes cannot hold exactly %d bits", ErrInvalidText, n, bitCount)
	}
	v := New(bitCount)
	for i := 0; i < n; i++ {
		hi, ok1 := hexValue(s[2*i])
		lo, ok2 := hexValue(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: bad hex digit near offset %d", ErrInvalidText, 2*i)
		}
		v.buf[n-1-i] = hi<<4 | lo
	}
	if n > 0 {
		v.buf[n-1] &= v.lastByteMask()
	}
	return v, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Format implements fmt.Formatter: %b, %s and %v print the binary form, %x
// and %X the hex form.
func (v *Vector) Format(f fmt.State, verb rune) {
	switch verb {
	case 'x':
		_, _ = f.Write([]byte(v.hex(hexDigits)))
	case 'X':
		_, _ = f.Write([]byte(v.hex("0123456789ABCDEF")))
	case 'b', 's', 'v':
		_, _ = f.Write([]byte(v.String()))
	default:
		fmt.Fprintf(f, "%%!%c(bitvec.Vector=%s)", verb, v.String())
	}
}

// MarshalText encodes the binary form.
func (v *Vector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes the binary form.
func (v *Vector) UnmarshalText(text []byte) error {
	return v.setBinary(string(text))
}

// Fingerprint hashes the logical content and length of the vector.
func (v *Vector) Fingerprint() uint64 {
	h := xxhash.New()
	n := byteCount(v.bitCount)
	if n > 0 {
		_, _ = h.Write(v.buf[:n-1])
		_, _ = h.Write([]byte{v.buf[n-1] & v.lastByteMask()})
	}
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(v.bitCount))
	_, _ = h.Write(length[:])
	return h.Sum64()
}
