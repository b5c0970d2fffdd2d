package identity_test

import (
	"testing"

	"github.com/storyloom/warden/internal/adapters/identity"
	"github.com/storyloom/warden/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContents = map[domain.PassageRef]string{
	"start":  "You wake up in a clearing.",
	"cave":   "The cave mouth yawns before you.",
	"dragon": "The dragon is asleep. Probably.",
}

func TestHasher_Deterministic(t *testing.T) {
	h := identity.NewHasher()
	route := domain.Route{"start", "cave", "dragon"}

	first, err := h.Hash(route, testContents)
	require.NoError(t, err)

	for range 10 {
		again, err := h.Hash(route, testContents)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHasher_FixedWidthHexFormat(t *testing.T) {
	h := identity.NewHasher()

	id, err := h.Hash(domain.Route{"start"}, testContents)
	require.NoError(t, err)

	assert.Len(t, string(id), domain.IdentityLen)
	assert.True(t, id.Valid(), "identity %q should match the identity format", id)
}

func TestHasher_ReorderingRouteChangesIdentity(t *testing.T) {
	h := identity.NewHasher()

	a, err := h.Hash(domain.Route{"start", "cave", "dragon"}, testContents)
	require.NoError(t, err)
	b, err := h.Hash(domain.Route{"start", "dragon", "cave"}, testContents)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_EditingContentChangesIdentity(t *testing.T) {
	h := identity.NewHasher()
	route := domain.Route{"start", "cave"}

	before, err := h.Hash(route, testContents)
	require.NoError(t, err)

	edited := map[domain.PassageRef]string{
		"start": testContents["start"],
		// Single character changed.
		"cave": "The cave mouth yawns before you!",
	}
	after, err := h.Hash(route, edited)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestHasher_SeparatorsPreventBoundaryCollisions(t *testing.T) {
	h := identity.NewHasher()

	a, err := h.Hash(domain.Route{"ab", "c"}, map[domain.PassageRef]string{"ab": "", "c": ""})
	require.NoError(t, err)
	b, err := h.Hash(domain.Route{"a", "bc"}, map[domain.PassageRef]string{"a": "", "bc": ""})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_InvalidRoute(t *testing.T) {
	h := identity.NewHasher()

	_, err := h.Hash(nil, testContents)
	require.ErrorIs(t, err, domain.ErrInvalidRoute)

	_, err = h.Hash(domain.Route{"start", "  "}, testContents)
	require.ErrorIs(t, err, domain.ErrInvalidRoute)
}
