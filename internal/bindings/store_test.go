package bindings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The store itself is exercised against a live database; these tests cover
// the nil-store contract the rest of the service relies on when running
// without one.

func TestNilStoreReportsUnavailable(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.ErrorIs(t, s.Bind(ctx, "1", 1), ErrUnavailable)
	assert.ErrorIs(t, s.Unbind(ctx, "1"), ErrUnavailable)

	_, err := s.Whois(ctx, "1")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.ByPersona(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Clean(ctx, []int{1})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewStoreNilPool(t *testing.T) {
	assert.Nil(t, NewStore(nil))
}
