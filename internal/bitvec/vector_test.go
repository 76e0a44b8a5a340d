package bitvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVector(rng *rand.Rand, bitCount int) *Vector {
	v := New(bitCount)
	for i := 0; i < bitCount; i++ {
		if rng.Intn(2) == 1 {
			v.Set(i)
		}
	}
	return v
}

func TestSetBitCountClearsAndNeverShrinksBacking(t *testing.T) {
	v := New(40)
	for i := 0; i < 40; i++ {
		v.Set(i)
	}
	before := cap(v.buf)

	v.SetBitCount(9)
	assert.Equal(t, 9, v.Len())
	assert.Zero(t, v.CountSetBits(), "expected cleared vector, got %s", v)
	assert.Equal(t, before, cap(v.buf), "backing storage changed")
}

func TestSingleBitOperations(t *testing.T) {
	v := New(13)
	v.Set(0)
	v.Set(12)
	v.Flip(5)
	v.Flip(12)
	v.Put(7, true)
	v.Unset(0)

	want := map[int]bool{5: true, 7: true}
	for i := 0; i < v.Len(); i++ {
		require.Equal(t, want[i], v.Get(i), "bit %d", i)
	}
}

func TestGetPanicsOutOfRange(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		assert.Contains(t, r.(string), "out of range")
	}()
	New(8).Get(8)
}

func TestClipKeepsPrefix(t *testing.T) {
	v, err := Parse("1011001")
	require.NoError(t, err)
	v.Clip(3)
	assert.Equal(t, "001", v.String())
}

func TestResizeZeroesExposedBits(t *testing.T) {
	v := New(12)
	for i := 0; i < 12; i++ {
		v.Set(i)
	}
	v.Clip(3)
	v.Resize(12)
	assert.Equal(t, 3, v.CountSetBits(), "expected only the kept bits to be set: %s", v)
}

func TestUint64RoundTripAtUnalignedOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, width := range []int{1, 3, 7, 8, 9, 15, 31, 33, 63, 64} {
		for offset := 0; offset < 17; offset++ {
			v := randomVector(rng, offset+width+5)
			before := v.Clone()
			value := rng.Uint64()
			v.SetUint64(value, offset, width)

			want := value
			if width < 64 {
				want &= 1<<width - 1
			}
			require.Equal(t, want, v.Uint64(offset, width), "width=%d offset=%d", width, offset)
			for i := 0; i < v.Len(); i++ {
				if i >= offset && i < offset+width {
					continue
				}
				require.Equal(t, before.Get(i), v.Get(i), "width=%d offset=%d: bit %d outside range changed", width, offset, i)
			}
		}
	}
}

func TestUint64IsLittleEndianBitOrder(t *testing.T) {
	v := New(16)
	v.SetUint64(0x0102, 0, 16)
	assert.Equal(t, []byte{0x02, 0x01}, v.Bytes()[:2])
	assert.True(t, v.Get(1))
	assert.True(t, v.Get(8))
}

func TestCopyToAlignedAndUnaligned(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cases := []struct {
		name      string
		srcOffset int
		dstOffset int
		width     int
	}{
		{name: "aligned full bytes", srcOffset: 8, dstOffset: 16, width: 24},
		{name: "aligned partial tail", srcOffset: 0, dstOffset: 8, width: 13},
		{name: "unaligned source", srcOffset: 3, dstOffset: 0, width: 70},
		{name: "unaligned destination", srcOffset: 0, dstOffset: 5, width: 129},
		{name: "both unaligned", srcOffset: 7, dstOffset: 1, width: 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := randomVector(rng, tc.srcOffset+tc.width+3)
			dst := randomVector(rng, tc.dstOffset+tc.width+6)
			before := dst.Clone()

			src.CopyTo(dst, tc.dstOffset, tc.srcOffset, tc.width)

			for i := 0; i < dst.Len(); i++ {
				want := before.Get(i)
				if i >= tc.dstOffset && i < tc.dstOffset+tc.width {
					want = src.Get(tc.srcOffset + i - tc.dstOffset)
				}
				require.Equal(t, want, dst.Get(i), "bit %d", i)
			}
		})
	}
}

func TestCopyToGrowsDestination(t *testing.T) {
	src, err := Parse("1111")
	require.NoError(t, err)
	dst := New(2)
	src.CopyTo(dst, 6, 0, 4)
	assert.Equal(t, 10, dst.Len())
	assert.Equal(t, "1111000000", dst.String())
}

func TestHammingDistanceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{0, 1, 7, 8, 9, 63, 64, 65, 200} {
		a := randomVector(rng, n)
		b := randomVector(rng, n)

		ab, err := a.HammingDistance(b)
		require.NoError(t, err, "n=%d", n)
		ba, err := b.HammingDistance(a)
		require.NoError(t, err, "n=%d", n)
		require.Equal(t, ab, ba, "n=%d: asymmetric distance", n)
		require.GreaterOrEqual(t, ab, 0)
		require.LessOrEqual(t, ab, n)
		self, err := a.HammingDistance(a)
		require.NoError(t, err)
		require.Zero(t, self, "n=%d", n)

		naive := 0
		for i := 0; i < n; i++ {
			if a.Get(i) != b.Get(i) {
				naive++
			}
		}
		require.Equal(t, naive, ab, "n=%d", n)
	}
}

func TestHammingDistanceIgnoresClippedBits(t *testing.T) {
	a := New(16)
	b := New(16)
	for i := 5; i < 8; i++ {
		a.Set(i)
	}
	a.Clip(5)
	b.Clip(5)
	d, err := a.HammingDistance(b)
	require.NoError(t, err)
	assert.Zero(t, d, "expected stale bits to be ignored")
}

func TestHammingDistanceLengthMismatch(t *testing.T) {
	_, err := New(8).HammingDistance(New(9))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEqualAndCopyFrom(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := randomVector(rng, 77)
	b := New(3)
	b.CopyFrom(a)
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	b.Flip(76)
	assert.False(t, a.Equal(b), "expected copies to be independent")
	assert.True(t, a.EqualPrefix(b, 76))
}
