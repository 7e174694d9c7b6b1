package service_test

import (
	"context"
	"testing"

	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.org", model.Permissions{Enabled: true})
	other := testutil.CreateTestUser(t, db, "Other", "other@example.org", model.Permissions{Enabled: true})

	svc := service.NewTagService(repository.NewPgTagRepository(db), db)
	ctx := context.Background()

	root, err := svc.CreateTag(ctx, owner, service.CreateTagRequest{Name: "tissue"})
	require.NoError(t, err)
	require.NotZero(t, root.ID)
	assert.Nil(t, root.ParentTagID)

	child, err := svc.CreateTag(ctx, owner, service.CreateTagRequest{Name: "epithelial", ParentTagID: &root.ID})
	require.NoError(t, err)
	// The relation row is written in the same transaction as the tag.
	assert.Equal(t, 1, testutil.CountRows(t, db, "tag_relations"))

	tags, err := svc.ListTags(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	// Tags are private to their creator.
	tags, err = svc.ListTags(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, tags)

	// Another user cannot delete the owner's tag.
	require.NoError(t, svc.DeleteTag(ctx, other, child.ID))
	assert.Equal(t, 2, testutil.CountRows(t, db, "tags"))

	require.NoError(t, svc.DeleteTag(ctx, owner, child.ID))
	assert.Equal(t, 1, testutil.CountRows(t, db, "tags"))
	assert.Equal(t, 0, testutil.CountRows(t, db, "tag_relations"))
}

func TestCreateTagRequiresName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	svc := service.NewTagService(repository.NewPgTagRepository(db), db)
	_, err := svc.CreateTag(context.Background(), 1, service.CreateTagRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.Equal(t, 0, testutil.CountRows(t, db, "tags"))
}
