package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

func TestConsistencyValidator_IsMember(t *testing.T) {
	tags := NewTagStore(nil)
	v := NewConsistencyValidator(tags, NewClassifier(tags))

	root := domain.Node{ID: 10, Kind: domain.KindGroup, Children: []domain.NodeID{11},
		Tags: rawTags("managed-outline:root", "True")}
	child := domain.Node{ID: 11, Tags: rawTags("managed-outline:root-id", "10")}
	foreign := domain.Node{ID: 11, Tags: rawTags("managed-outline:root-id", "4")}
	unreferenced := domain.Node{ID: 11}

	member, err := v.IsMember(root, child)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = v.IsMember(root, foreign)
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, member)

	_, err = v.IsMember(root, unreferenced)
	assert.ErrorIs(t, err, domain.ErrChildLayerWithoutRootReference)

	plain := root
	plain.Tags = nil
	_, err = v.IsMember(plain, child)
	assert.ErrorIs(t, err, domain.ErrLayerWasNotManagedRoot)
}

func TestConsistencyValidator_EmptyGroup(t *testing.T) {
	tags := NewTagStore(nil)
	v := NewConsistencyValidator(tags, NewClassifier(tags))
	empty := domain.Node{ID: 10, Kind: domain.KindGroup, Tags: rawTags("managed-outline:root", "True")}

	_, err := v.IsMember(empty, domain.Node{Tags: rawTags("managed-outline:root-id", "10")})

	assert.ErrorIs(t, err, domain.ErrChildlessRoot)
}

func TestConsistencyValidator_CheckOrder(t *testing.T) {
	tags := NewTagStore(nil)
	v := NewConsistencyValidator(tags, NewClassifier(tags))

	// Childless and unmanaged: the child count is checked first.
	_, err := v.IsMember(domain.Node{ID: 1}, domain.Node{})
	assert.ErrorIs(t, err, domain.ErrChildlessRoot)

	// Unmanaged root and unreferenced child: the root is checked first.
	_, err = v.IsMember(domain.Node{ID: 1, Children: []domain.NodeID{2}}, domain.Node{})
	assert.ErrorIs(t, err, domain.ErrLayerWasNotManagedRoot)
}
