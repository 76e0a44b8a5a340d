// Package bitvec implements a growable, densely packed bit vector backed by a
// byte slice. Bit i lives in byte i/8 at position i%8 (least significant bit
// first), so multi-bit integers are stored little-endian in the byte stream.
package bitvec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// MaxIntWidth is the widest integer that Uint64/SetUint64 can move at once.
const MaxIntWidth = 64

var (
	ErrLengthMismatch = errors.New("bit vector length mismatch")
	ErrInvalidText    = errors.New("invalid bit vector text")
)

// Vector is a sequence of bits. The backing allocation only ever grows;
// shrinking the logical length leaves the bytes in place.
//
// The zero value is an empty vector ready for use.
type Vector struct {
	buf      []byte
	bitCount int
}

// New returns a vector holding bitCount zero bits.
func New(bitCount int) *Vector {
	v := &Vector{}
	v.SetBitCount(bitCount)
	return v
}

func byteCount(bitCount int) int {
	return (bitCount + 7) / 8
}

// Len returns the number of bits in the vector.
func (v *Vector) Len() int {
	return v.bitCount
}

// ByteLen returns the number of bytes needed to hold Len bits.
func (v *Vector) ByteLen() int {
	return byteCount(v.bitCount)
}

// Bytes returns the bytes holding the logical bits. The slice aliases the
// vector storage. Bits past Len in the final byte are unspecified.
func (v *Vector) Bytes() []byte {
	return v.buf[:byteCount(v.bitCount)]
}

// grow makes sure at least n bytes are addressable. Bytes that become newly
// addressable are zero.
func (v *Vector) grow(n int) {
	if n <= len(v.buf) {
		return
	}
	if n <= cap(v.buf) {
		old := len(v.buf)
		v.buf = v.buf[:n]
		clear(v.buf[old:])
		return
	}
	next := make([]byte, n)
	copy(next, v.buf)
	v.buf = next
}

// SetBitCount sets the logical length to bitCount and unsets every bit.
func (v *Vector) SetBitCount(bitCount int) {
	if bitCount < 0 {
		panic(fmt.Sprintf("bitvec.SetBitCount: negative bit count %d", bitCount))
	}
	n := byteCount(bitCount)
	v.grow(n)
	v.bitCount = bitCount
	clear(v.buf[:n])
}

// Resize sets the logical length to bitCount while keeping the first
// min(Len, bitCount) bits. Bits exposed by growing are zero.
func (v *Vector) Resize(bitCount int) {
	if bitCount < 0 {
		panic(fmt.Sprintf("bitvec.Resize: negative bit count %d", bitCount))
	}
	old := v.bitCount
	if bitCount <= old {
		v.bitCount = bitCount
		return
	}
	v.grow(byteCount(bitCount))
	if rem := old % 8; rem != 0 {
		v.buf[old/8] &= byte(1)<<rem - 1
	}
	clear(v.buf[byteCount(old):byteCount(bitCount)])
	v.bitCount = bitCount
}

// Clip truncates the vector to bitCount bits. It cannot grow the vector.
func (v *Vector) Clip(bitCount int) {
	if bitCount < 0 || bitCount > v.bitCount {
		panic(fmt.Sprintf("bitvec.Clip: bit count %d out of range [0,%d]", bitCount, v.bitCount))
	}
	v.bitCount = bitCount
}

// Clear unsets every bit.
func (v *Vector) Clear() {
	clear(v.buf[:byteCount(v.bitCount)])
}

func (v *Vector) checkIndex(op string, index int) {
	if index < 0 || index >= v.bitCount {
		panic(fmt.Sprintf("bitvec.%s: index %d out of range [0,%d)", op, index, v.bitCount))
	}
}

func (v *Vector) checkRange(op string, bitIndex, width int) {
	if width < 0 || width > MaxIntWidth {
		panic(fmt.Sprintf("bitvec.%s: width %d out of range [0,%d]", op, width, MaxIntWidth))
	}
	if bitIndex < 0 || bitIndex+width > v.bitCount {
		panic(fmt.Sprintf("bitvec.%s: range [%d,%d) exceeds length %d", op, bitIndex, bitIndex+width, v.bitCount))
	}
}

// Get reports whether the bit at index is set.
func (v *Vector) Get(index int) bool {
	v.checkIndex("Get", index)
	return v.buf[index>>3]&(1<<(index&7)) != 0
}

// Set sets the bit at index.
func (v *Vector) Set(index int) {
	v.checkIndex("Set", index)
	v.buf[index>>3] |= 1 << (index & 7)
}

// Unset clears the bit at index.
func (v *Vector) Unset(index int) {
	v.checkIndex("Unset", index)
	v.buf[index>>3] &^= 1 << (index & 7)
}

// Flip inverts the bit at index.
func (v *Vector) Flip(index int) {
	v.checkIndex("Flip", index)
	v.buf[index>>3] ^= 1 << (index & 7)
}

// Put sets or clears the bit at index.
func (v *Vector) Put(index int, value bool) {
	if value {
		v.Set(index)
		return
	}
	v.Unset(index)
}

// Uint64 reads width bits starting at bitIndex. Bit bitIndex becomes the
// least significant bit of the result; the result is zero-extended.
func (v *Vector) Uint64(bitIndex, width int) uint64 {
	v.checkRange("Uint64", bitIndex, width)
	return v.readBits(bitIndex, width)
}

// SetUint64 writes the low width bits of value starting at bitIndex. Higher
// bits of value are ignored.
func (v *Vector) SetUint64(value uint64, bitIndex, width int) {
	v.checkRange("SetUint64", bitIndex, width)
	v.writeBits(value, bitIndex, width)
}

func (v *Vector) readBits(bitIndex, width int) uint64 {
	var value uint64
	for read := 0; read < width; {
		pos := bitIndex + read
		offset := pos & 7
		n := min(8-offset, width-read)
		chunk := uint64(v.buf[pos>>3]>>offset) & (1<<n - 1)
		value |= chunk << read
		read += n
	}
	return value
}

func (v *Vector) writeBits(value uint64, bitIndex, width int) {
	for written := 0; written < width; {
		pos := bitIndex + written
		offset := pos & 7
		n := min(8-offset, width-written)
		mask := byte((1<<n - 1) << offset)
		chunk := byte((value>>written)&(1<<n-1)) << offset
		v.buf[pos>>3] = v.buf[pos>>3]&^mask | chunk
		written += n
	}
}

// CopyTo copies width bits of v starting at srcOffset into dst starting at
// dstOffset. dst grows when the range runs past its end. When dst is v the
// two ranges must not overlap.
func (v *Vector) CopyTo(dst *Vector, dstOffset, srcOffset, width int) {
	if width < 0 || srcOffset < 0 || srcOffset+width > v.bitCount {
		panic(fmt.Sprintf("bitvec.CopyTo: source range [%d,%d) exceeds length %d", srcOffset, srcOffset+width, v.bitCount))
	}
	if dstOffset < 0 {
		panic(fmt.Sprintf("bitvec.CopyTo: negative destination offset %d", dstOffset))
	}
	if width == 0 {
		return
	}
	if dst.bitCount < dstOffset+width {
		dst.Resize(dstOffset + width)
	}

	if srcOffset%8 == 0 && dstOffset%8 == 0 {
		full := width / 8
		src := srcOffset / 8
		dstByte := dstOffset / 8
		copy(dst.buf[dstByte:dstByte+full], v.buf[src:src+full])
		if rem := width % 8; rem != 0 {
			dst.writeBits(uint64(v.buf[src+full]), dstOffset+full*8, rem)
		}
		return
	}

	for copied := 0; copied < width; {
		n := min(MaxIntWidth, width-copied)
		dst.writeBits(v.readBits(srcOffset+copied, n), dstOffset+copied, n)
		copied += n
	}
}

// lastByteMask selects the meaningful bits of the final logical byte.
func (v *Vector) lastByteMask() byte {
	if rem := v.bitCount % 8; rem != 0 {
		return byte(1)<<rem - 1
	}
	return 0xff
}

// HammingDistance counts the bits that differ between v and rhs. Vectors of
// different lengths are not comparable.
func (v *Vector) HammingDistance(rhs *Vector) (int, error) {
	if v.bitCount != rhs.bitCount {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, v.bitCount, rhs.bitCount)
	}
	n := byteCount(v.bitCount)
	if n == 0 {
		return 0, nil
	}
	a, b := v.buf[:n], rhs.buf[:n]
	distance := 0
	i := 0
	for ; i+8 <= n-1; i += 8 {
		distance += bits.OnesCount64(binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:]))
	}
	for ; i < n-1; i++ {
		distance += bits.OnesCount8(a[i] ^ b[i])
	}
	distance += bits.OnesCount8((a[n-1] ^ b[n-1]) & v.lastByteMask())
	return distance, nil
}

// CountSetBits returns the number of set bits.
func (v *Vector) CountSetBits() int {
	n := byteCount(v.bitCount)
	if n == 0 {
		return 0
	}
	count := 0
	for _, b := range v.buf[:n-1] {
		count += bits.OnesCount8(b)
	}
	return count + bits.OnesCount8(v.buf[n-1]&v.lastByteMask())
}

// EqualPrefix reports whether the first bitCount bits of v and rhs match.
func (v *Vector) EqualPrefix(rhs *Vector, bitCount int) bool {
	if bitCount < 0 || bitCount > v.bitCount || bitCount > rhs.bitCount {
		panic(fmt.Sprintf("bitvec.EqualPrefix: bit count %d exceeds operand length (%d, %d)", bitCount, v.bitCount, rhs.bitCount))
	}
	full := bitCount / 8
	if !bytes.Equal(v.buf[:full], rhs.buf[:full]) {
		return false
	}
	rem := bitCount % 8
	if rem == 0 {
		return true
	}
	mask := byte(1)<<rem - 1
	return (v.buf[full]^rhs.buf[full])&mask == 0
}

// Equal reports whether v and rhs hold the same bits.
func (v *Vector) Equal(rhs *Vector) bool {
	return v.bitCount == rhs.bitCount && v.EqualPrefix(rhs, v.bitCount)
}

// CopyFrom makes v a deep copy of src.
func (v *Vector) CopyFrom(src *Vector) {
	n := byteCount(src.bitCount)
	v.grow(n)
	copy(v.buf[:n], src.buf[:n])
	v.bitCount = src.bitCount
}

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	out := &Vector{}
	out.CopyFrom(v)
	return out
}
