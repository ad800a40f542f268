package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	s := MakeBitmap[int](10)

	assert.False(t, s.IsSet(3))
	assert.False(t, s.IsSet(-1))

	s.Set(3)
	s.Set(70)
	s.Set(129)

	assert.True(t, s.IsSet(3))
	assert.True(t, s.IsSet(70))
	assert.True(t, s.IsSet(129))
	assert.False(t, s.IsSet(4))
	assert.False(t, s.IsSet(1000))

	assert.Equal(t, 3, s.Size())

	var got []int

	s.Range(func(k int) bool {
		got = append(got, k)
		return true
	})

	assert.Equal(t, []int{3, 70, 129}, got)

	s.Clear(70)
	s.Clear(5000)

	assert.False(t, s.IsSet(70))
	assert.Equal(t, 2, s.Size())
}

func TestBitmapRangeStop(t *testing.T) {
	s := MakeBitmap[int64](0)

	s.Set(1)
	s.Set(2)
	s.Set(3)

	n := 0

	s.Range(func(k int64) bool {
		n++
		return k < 2
	})

	assert.Equal(t, 2, n)
}
