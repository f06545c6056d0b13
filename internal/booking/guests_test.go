package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResyncChildAges(t *testing.T) {
	padded := ResyncChildAges([]ChildAge{{Age: 5}}, 3)
	assert.Equal(t, []ChildAge{{Age: 5}, {Age: 0}, {Age: 0}}, padded)

	truncated := ResyncChildAges([]ChildAge{{Age: 5}, {Age: 7}}, 1)
	assert.Equal(t, []ChildAge{{Age: 5}}, truncated)

	assert.Empty(t, ResyncChildAges(nil, 0))
}

func TestGuestsNormalized(t *testing.T) {
	g := Guests{Adults: 2, Children: 2, ChildAges: []int{9}}.Normalized()
	assert.Equal(t, []int{9, 0}, g.ChildAges)

	g = Guests{Adults: 2, Children: 0, ChildAges: []int{9, 4}}.Normalized()
	assert.Empty(t, g.ChildAges)

	g = Guests{Adults: 2, Children: -1}.Normalized()
	assert.Zero(t, g.Children)
	assert.Empty(t, g.ChildAges)
}

func TestGuestsValidate(t *testing.T) {
	require.NoError(t, DefaultGuests().Validate())
	require.ErrorIs(t, Guests{Adults: 0}.Validate(), ErrNoAdults)
	require.ErrorIs(t, Guests{Adults: 1, Children: -1}.Validate(), ErrNegativeGuests)
	require.ErrorIs(t, Guests{Adults: -3}.Validate(), ErrNegativeGuests)
	require.ErrorIs(t, Guests{Adults: MaxAdults + 1}.Validate(), ErrTooManyGuests)
	require.ErrorIs(t, Guests{Adults: 1, Children: 1_000_000}.Validate(), ErrTooManyGuests)
	require.NoError(t, Guests{Adults: MaxAdults, Children: MaxChildren}.Validate())
	require.ErrorIs(t, Guests{Adults: 1, Children: 1, ChildAges: []int{18}}.Validate(), ErrChildAgeOutside)
}

func TestGuestsSummary(t *testing.T) {
	assert.Equal(t, "1 adult", Guests{Adults: 1}.Summary())
	assert.Equal(t, "2 adults, 2 children (5, 0)", Guests{Adults: 2, Children: 2, ChildAges: []int{5}}.Summary())
}

func TestGuestsEqualIgnoresPadding(t *testing.T) {
	a := Guests{Adults: 2, Children: 1}
	b := Guests{Adults: 2, Children: 1, ChildAges: []int{0}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Guests{Adults: 2, Children: 1, ChildAges: []int{3}}))
}

func TestIdempotencyKeyContext(t *testing.T) {
	_, ok := IdempotencyKeyFromContext(context.Background())
	assert.False(t, ok)

	key, ok := IdempotencyKeyFromContext(NewContextWithIdempotencyKey(context.Background(), "k-1"))
	require.True(t, ok)
	assert.Equal(t, "k-1", key)
}
