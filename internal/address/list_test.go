package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{Street: "Mitre", Number: "10", City: "Rosario", State: "Santa Fe"}
}

func TestNewListKeepOneSeedsBlankSlot(t *testing.T) {
	l := NewList(nil, KeepOne)
	require.Equal(t, 1, l.Len())
	assert.True(t, l.Records()[0].IsEmpty())

	l = NewList(nil, AllowEmpty)
	assert.Equal(t, 0, l.Len())
}

func TestNewListCopiesInput(t *testing.T) {
	src := []Record{validRecord()}
	l := NewList(src, AllowEmpty)

	src[0].Street = "changed"
	assert.Equal(t, "Mitre", l.Records()[0].Street)
}

func TestSetFieldAt(t *testing.T) {
	l := NewList([]Record{validRecord()}, AllowEmpty)

	require.NoError(t, l.SetFieldAt(0, "street", "Corrientes"))
	require.NoError(t, l.SetFieldAt(0, "floor", "2"))
	got := l.Records()[0]
	assert.Equal(t, "Corrientes", got.Street)
	assert.Equal(t, "2", got.Floor)
	assert.Equal(t, "10", got.Number)

	assert.Error(t, l.SetFieldAt(0, "zipcode", "2000"))
	assert.Error(t, l.SetFieldAt(5, "street", "x"))
	assert.Error(t, l.SetFieldAt(-1, "street", "x"))
}

func TestRemoveAt(t *testing.T) {
	t.Run("keep-one reinserts a blank slot", func(t *testing.T) {
		l := NewList([]Record{validRecord()}, KeepOne)
		require.NoError(t, l.RemoveAt(0))
		require.Equal(t, 1, l.Len())
		assert.True(t, l.Records()[0].IsEmpty())
	})

	t.Run("allow-empty may reach zero", func(t *testing.T) {
		l := NewList([]Record{validRecord()}, AllowEmpty)
		require.NoError(t, l.RemoveAt(0))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("removes the right slot", func(t *testing.T) {
		a, b := validRecord(), validRecord()
		b.Street = "Corrientes"
		l := NewList([]Record{a, b}, AllowEmpty)
		require.NoError(t, l.RemoveAt(0))
		require.Equal(t, 1, l.Len())
		assert.Equal(t, "Corrientes", l.Records()[0].Street)
	})

	t.Run("out of range", func(t *testing.T) {
		l := NewList(nil, AllowEmpty)
		assert.Error(t, l.RemoveAt(0))
	})
}

func TestAddEmpty(t *testing.T) {
	l := NewList([]Record{validRecord()}, AllowEmpty)
	idx := l.AddEmpty()
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Records()[idx].IsEmpty())
}

func TestListValidate(t *testing.T) {
	t.Run("keep-one validates blanks as required", func(t *testing.T) {
		l := NewList(nil, KeepOne)
		errs := l.Validate()
		require.Len(t, errs, 1)
		assert.NotEmpty(t, errs[0])
	})

	t.Run("allow-empty skips blank slots", func(t *testing.T) {
		l := NewList([]Record{validRecord()}, AllowEmpty)
		l.AddEmpty()
		errs := l.Validate()
		require.Len(t, errs, 2)
		assert.Empty(t, errs[0])
		assert.Empty(t, errs[1])
	})
}

func TestSubmittable(t *testing.T) {
	t.Run("keep-one needs at least one complete record", func(t *testing.T) {
		l := NewList(nil, KeepOne)
		assert.False(t, l.Submittable())

		l = NewList([]Record{validRecord()}, KeepOne)
		assert.True(t, l.Submittable())
	})

	t.Run("keep-one rejects a half-filled slot", func(t *testing.T) {
		l := NewList([]Record{{Street: "Mitre"}}, KeepOne)
		assert.False(t, l.Submittable())
	})

	t.Run("allow-empty accepts an empty list", func(t *testing.T) {
		l := NewList(nil, AllowEmpty)
		assert.True(t, l.Submittable())
	})

	t.Run("allow-empty rejects an invalid partial slot", func(t *testing.T) {
		l := NewList([]Record{{Street: "Mitre"}}, AllowEmpty)
		assert.False(t, l.Submittable())
	})
}
