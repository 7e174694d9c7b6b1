package repository_test

import (
	"context"
	"testing"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageCreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	uploader := testutil.CreateTestUser(t, db, "Uploader", "up@example.org", model.Permissions{Enabled: true, Uploader: true})
	repo := repository.NewPgImageRepository(db)
	ctx := context.Background()

	image := &model.Image{Path: "slides/abc.png", Hash: "deadbeef", OriginalName: "abc.png", UploaderID: uploader, FromIP: "203.0.113.7"}
	require.NoError(t, repo.Create(ctx, image))
	require.NotZero(t, image.ID)

	found, err := repo.FindByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, "slides/abc.png", found.Path)
	assert.Equal(t, 0, found.TimesGraded)

	_, err = repo.FindByID(ctx, 999999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestNextRandom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	repo := repository.NewPgImageRepository(db)
	ctx := context.Background()

	_, err := repo.NextRandom(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	uploader := testutil.CreateTestUser(t, db, "Uploader", "up@example.org", model.Permissions{Enabled: true, Uploader: true})
	want := testutil.CreateTestImage(t, db, uploader, "only.png")

	image, err := repo.NextRandom(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, image.ID)
}
