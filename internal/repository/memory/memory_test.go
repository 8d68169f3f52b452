package memory

import (
	"clickify/internal/domain"
	"clickify/internal/repository"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_Links(t *testing.T) {
	ctx := context.Background()
	s := New()

	target := "https://example.com/test-file.zip"
	link := &domain.TrackedLink{Name: "Test File", Slug: "test-file", TargetURL: &target}
	require.NoError(t, s.SaveLink(ctx, link))
	assert.NotEqual(t, uuid.Nil, link.ID)
	assert.False(t, link.CreatedAt.IsZero())

	err := s.SaveLink(ctx, &domain.TrackedLink{Name: "dup", Slug: "test-file"})
	assert.ErrorIs(t, err, repository.ErrSlugExists)

	found, err := s.GetLinkBySlug(ctx, "test-file")
	require.NoError(t, err)
	assert.Equal(t, link.ID, found.ID)
	assert.Equal(t, target, found.Destination())

	// Returned values are copies.
	found.Name = "changed"
	again, err := s.GetLinkBySlug(ctx, "test-file")
	require.NoError(t, err)
	assert.Equal(t, "Test File", again.Name)

	_, err = s.GetLinkBySlug(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestMemStorage_DeleteCascadesClicks(t *testing.T) {
	ctx := context.Background()
	s := New()

	keep := &domain.TrackedLink{Name: "keep", Slug: "keep"}
	drop := &domain.TrackedLink{Name: "drop", Slug: "drop"}
	require.NoError(t, s.SaveLink(ctx, keep))
	require.NoError(t, s.SaveLink(ctx, drop))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateClick(ctx, &domain.ClickEvent{LinkID: drop.ID, IPAddress: "8.8.8.8"}))
	}
	click := &domain.ClickEvent{LinkID: keep.ID, IPAddress: "1.1.1.1"}
	require.NoError(t, s.CreateClick(ctx, click))
	assert.Equal(t, int64(4), click.ID)
	assert.False(t, click.Timestamp.IsZero())
	assert.Equal(t, 4, s.ClickCount())

	require.NoError(t, s.DeleteLink(ctx, "drop"))
	assert.Empty(t, s.Clicks(drop.ID))
	assert.Len(t, s.Clicks(keep.ID), 1)
	assert.Equal(t, 1, s.ClickCount())

	assert.ErrorIs(t, s.DeleteLink(ctx, "drop"), repository.ErrLinkNotFound)
}
