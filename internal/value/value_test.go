package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	require.False(t, Nil_().IsTruthy())
	require.False(t, FromBool(false).IsTruthy())
	require.True(t, FromBool(true).IsTruthy())
	require.True(t, FromInt(0).IsTruthy())
	require.True(t, FromString("").IsTruthy())
}

func TestCompareTotalOrdering(t *testing.T) {
	require.Equal(t, 0, Compare(FromInt(1), FromInt(1)))
	require.Negative(t, Compare(FromInt(1), FromInt(2)))
	require.Positive(t, Compare(FromInt(2), FromInt(1)))
	require.True(t, Equal(FromString("a"), FromString("a")))
	require.False(t, Equal(FromString("a"), FromString("b")))
}

func TestArrayValuePushPopShared(t *testing.T) {
	arr := NewArray(nil)
	arr.Push(FromInt(1))
	arr.Push(FromInt(2))
	require.Equal(t, 2, arr.Len())

	other := FromArray(arr)
	other.ArrayValue().Push(FromInt(3))
	require.Equal(t, 3, arr.Len(), "Array is a reference type shared across Value copies")

	v, ok := arr.Pop()
	require.True(t, ok)
	require.Equal(t, int64(3), v.Int())
	require.Equal(t, 2, arr.Len())

	_, ok = NewArray(nil).Pop()
	require.False(t, ok, "popping an empty array reports false rather than panicking")
}

func TestArrayValueGetSetBounds(t *testing.T) {
	arr := NewArray([]Value{FromInt(10), FromInt(20)})
	v, ok := arr.Get(1)
	require.True(t, ok)
	require.Equal(t, int64(20), v.Int())

	_, ok = arr.Get(5)
	require.False(t, ok)

	require.True(t, arr.Set(0, FromInt(99)))
	require.False(t, arr.Set(-1, FromInt(0)))
}

func TestDictValueRoundTrip(t *testing.T) {
	d := NewDict()
	d.Set(FromString("name"), FromString("husk"))
	d.Set(FromString("version"), FromInt(1))

	v, ok := d.Get(FromString("name"))
	require.True(t, ok)
	require.Equal(t, "husk", v.Str())

	snap := d.Snapshot()
	require.Len(t, snap, 2)
}
