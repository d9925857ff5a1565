package tests

import (
	"testing"

	"galerie/internal/services/slugregistry"
	"galerie/tests/suite"

	"github.com/google/uuid"

	"github.com/brianvoe/gofakeit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugLifecycle_HappyPath(t *testing.T) {
	ctx, st := suite.New(t)

	slug, err := st.Registry.GenerateUniqueSlug(ctx, "Sommer in Wien", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "sommer-in-wien", slug)

	gallery, err := st.Store.AddGallery("Sommer in Wien", slug)
	require.NoError(t, err)

	// Rename: the old link must keep resolving.
	newSlug, renamed, err := st.Registry.RenameSlug(ctx, gallery, "Winter in Wien")
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.Equal(t, "winter-in-wien", newSlug)

	res, err := st.Registry.ResolveSlug(ctx, "sommer-in-wien")
	require.NoError(t, err)
	redirect, ok := res.(slugregistry.Redirect)
	require.True(t, ok, "retired slug should resolve as a redirect")
	assert.Equal(t, "winter-in-wien", redirect.CurrentSlug)

	res, err = st.Registry.ResolveSlug(ctx, "winter-in-wien")
	require.NoError(t, err)
	_, ok = res.(slugregistry.Active)
	assert.True(t, ok, "current slug should resolve as active")
}

func TestSlugLifecycle_RenameBackReclaimsOwnSlug(t *testing.T) {
	ctx, st := suite.New(t)

	gallery, err := st.Store.AddGallery("Alpha", "alpha")
	require.NoError(t, err)

	_, _, err = st.Registry.RenameSlug(ctx, gallery, "Beta")
	require.NoError(t, err)

	current, err := st.Store.GetGalleryByID(ctx, gallery.ID)
	require.NoError(t, err)

	backSlug, renamed, err := st.Registry.RenameSlug(ctx, current, "Alpha")
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.Equal(t, "alpha", backSlug, "a gallery may reclaim its own retired slug")

	assert.Equal(t, 2, st.Store.RedirectCount(), "both retirements stay on record")

	res, err := st.Registry.ResolveSlug(ctx, "beta")
	require.NoError(t, err)
	redirect, ok := res.(slugregistry.Redirect)
	require.True(t, ok)
	assert.Equal(t, "alpha", redirect.CurrentSlug)
}

func TestSlugLifecycle_CollisionsProbeUpward(t *testing.T) {
	ctx, st := suite.New(t)

	title := gofakeit.City()

	first, err := st.Registry.GenerateUniqueSlug(ctx, title, uuid.Nil)
	require.NoError(t, err)
	_, err = st.Store.AddGallery(title, first)
	require.NoError(t, err)

	second, err := st.Registry.GenerateUniqueSlug(ctx, title, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, first+"-1", second)

	_, err = st.Store.AddGallery(title, second)
	require.NoError(t, err)

	third, err := st.Registry.GenerateUniqueSlug(ctx, title, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, first+"-2", third)
}

func TestSlugLifecycle_UnknownSlugIsNotFound(t *testing.T) {
	ctx, st := suite.New(t)

	res, err := st.Registry.ResolveSlug(ctx, "never-existed")
	require.NoError(t, err)
	_, ok := res.(slugregistry.NotFound)
	assert.True(t, ok)
}
