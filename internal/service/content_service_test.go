package service

import (
	"testing"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsService_HidesDrafts(t *testing.T) {
	h := newHarness(t)
	svc := NewNewsService(testutil.NewNewsStore(), h.documents)
	ctx := t.Context()

	img := testutil.MemoryBaseURL + "content/a.webp"
	draft, err := svc.Create(ctx, model.NewsRequest{Title: "ร่าง", Content: "x", ImageURL: &img})
	require.NoError(t, err)

	_, err = svc.Get(ctx, draft.ID, true)
	assert.ErrorIs(t, err, ErrNewsNotFound)
	items, total, err := svc.List(ctx, true, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	_, err = svc.Update(ctx, draft.ID, model.NewsRequest{Title: "ประกาศ", Content: "x", IsPublished: true})
	require.NoError(t, err)
	got, err := svc.Get(ctx, draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "ประกาศ", got.Title)
	assert.Equal(t, []string{img}, h.rdb.List(config.WorkerKey.BlobCleanupQueue), "dropped image is discarded")
}

func TestHeroImageService_RequiresImage(t *testing.T) {
	h := newHarness(t)
	svc := NewHeroImageService(testutil.NewHeroImageStore(), h.documents)

	_, err := svc.Create(t.Context(), model.HeroImageRequest{Caption: "no image"})
	assert.ErrorIs(t, err, ErrImageRequired)

	created, err := svc.Create(t.Context(), model.HeroImageRequest{ImageURL: testutil.MemoryBaseURL + "h.webp", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(t.Context(), created.ID))
	assert.ErrorIs(t, svc.Delete(t.Context(), created.ID), ErrHeroImageNotFound)
}
