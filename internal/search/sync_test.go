package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
	"github.com/t-simwa/swiftcart-catalog/pkg/logger"
)

func syncFixture(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			ID:        fmt.Sprintf("p%03d", i),
			Name:      fmt.Sprintf("Product %03d", i),
			Slug:      fmt.Sprintf("product-%03d", i),
			CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return products
}

func TestSyncer_ReindexAll(t *testing.T) {
	repo := &fakeRepo{products: syncFixture(250)}
	idx := &fakeIndex{}
	s := NewSyncer(repo, idx, logger.Discard())

	stats, err := s.ReindexAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, stats.Indexed)
	assert.Zero(t, stats.Failed)
	assert.Len(t, idx.indexed, 250)
	// Batches of 100, 100 and the trailing 50.
	assert.Equal(t, 3, idx.bulkCalls)
}

func TestSyncer_ReindexAllContinuesPastFailedBatch(t *testing.T) {
	repo := &fakeRepo{products: syncFixture(250)}
	idx := &fakeIndex{failCall: 2}
	s := NewSyncer(repo, idx, logger.Discard())

	stats, err := s.ReindexAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 150, stats.Indexed)
	assert.Equal(t, 100, stats.Failed)
}

func TestSyncer_ReindexAllListError(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("db down")}
	s := NewSyncer(repo, &fakeIndex{}, logger.Discard())

	_, err := s.ReindexAll(context.Background())
	assert.Error(t, err)
}

func TestSyncer_ReindexAllNoIndex(t *testing.T) {
	repo := &fakeRepo{products: syncFixture(5)}
	s := NewSyncer(repo, nil, logger.Discard())

	_, err := s.ReindexAll(context.Background())
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestSyncer_IndexOneSwallowsFailure(t *testing.T) {
	repo := &fakeRepo{products: syncFixture(1)}
	idx := &fakeIndex{bulkErr: errors.New("unused")}
	s := NewSyncer(repo, idx, logger.Discard())

	p := repo.products[0]
	assert.True(t, s.IndexOne(context.Background(), &p))
	require.Len(t, idx.indexed, 1)
	assert.Equal(t, p.ID, idx.indexed[0].ID)

	// No index configured is a quiet no-op, not an error.
	none := NewSyncer(repo, nil, logger.Discard())
	assert.False(t, none.IndexOne(context.Background(), &p))
}

func TestSyncer_RemoveOne(t *testing.T) {
	idx := &fakeIndex{}
	s := NewSyncer(&fakeRepo{}, idx, logger.Discard())

	assert.True(t, s.RemoveOne(context.Background(), "p001"))
	assert.Equal(t, []string{"p001"}, idx.deleted)

	none := NewSyncer(&fakeRepo{}, nil, logger.Discard())
	assert.False(t, none.RemoveOne(context.Background(), "p001"))
}
