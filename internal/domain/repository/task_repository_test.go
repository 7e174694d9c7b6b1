package repository_test

import (
	"context"
	"testing"

	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCRUDOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.org", model.Permissions{Enabled: true})
	stranger := testutil.CreateTestUser(t, db, "Stranger", "stranger@example.org", model.Permissions{Enabled: true})

	repo := repository.NewPgTaskRepository(db)
	ctx := context.Background()

	task := &model.Task{ShortName: "mitosis", Prompt: "Mitotic figure?", Investigator: owner}
	id, err := repo.Create(ctx, task)
	require.NoError(t, err)
	require.NotZero(t, id)

	owned, err := repo.ListByInvestigator(ctx, owner)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "mitosis", owned[0].ShortName)

	// A stranger's update must not touch the row.
	require.NoError(t, repo.Update(ctx, stranger, &model.Task{ID: id, ShortName: "hijacked", Prompt: "x"}))
	owned, err = repo.ListByInvestigator(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "mitosis", owned[0].ShortName)

	require.NoError(t, repo.Update(ctx, owner, &model.Task{ID: id, ShortName: "mitosis-v2", Prompt: "Mitotic figure?"}))
	owned, _ = repo.ListByInvestigator(ctx, owner)
	assert.Equal(t, "mitosis-v2", owned[0].ShortName)

	// Stranger delete is a no-op; owner delete removes the row.
	require.NoError(t, repo.Delete(ctx, stranger, id))
	assert.Equal(t, 1, testutil.CountRows(t, db, "tasks"))
	require.NoError(t, repo.Delete(ctx, owner, id))
	assert.Equal(t, 0, testutil.CountRows(t, db, "tasks"))
}

func TestListAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	owner := testutil.CreateTestUser(t, db, "Owner", "owner@example.org", model.Permissions{Enabled: true})
	grader := testutil.CreateTestUser(t, db, "Grader", "grader@example.org", model.Permissions{Enabled: true, Pathologist: true})
	assigned := testutil.CreateTestTask(t, db, owner, "assigned")
	testutil.CreateTestTask(t, db, owner, "not-assigned")
	testutil.AssignObservers(t, db, assigned, grader)

	repo := repository.NewPgTaskRepository(db)
	tasks, err := repo.ListAssigned(context.Background(), grader)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "assigned", tasks[0].ShortName)
}

func TestTaskTableProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	alice := testutil.CreateTestUser(t, db, "Alice", "alice@example.org", model.Permissions{Enabled: true, Pathologist: true})
	bob := testutil.CreateTestUser(t, db, "Bob", "bob@example.org", model.Permissions{Enabled: true, Pathologist: true})

	images := make([]int64, 4)
	for i := range images {
		images[i] = testutil.CreateTestImage(t, db, investigator, string(rune('a'+i))+".png")
	}
	taskID := testutil.CreateTestTask(t, db, investigator, "progress")
	testutil.AssignTaskImages(t, db, taskID, images...)
	testutil.AssignObservers(t, db, taskID, alice, bob)

	// Alice graded 2 of 4 assigned images, Bob all 4.
	testutil.SubmitTestRating(t, db, alice, images[0], taskID, model.RatingYes)
	testutil.SubmitTestRating(t, db, alice, images[1], taskID, model.RatingNo)
	for _, img := range images {
		testutil.SubmitTestRating(t, db, bob, img, taskID, model.RatingYes)
	}

	repo := repository.NewPgTaskRepository(db)
	table, err := repo.Table(context.Background(), investigator)
	require.NoError(t, err)
	require.Len(t, table, 1)

	row := table[0]
	assert.Equal(t, 4, row.ImageCount)
	assert.Equal(t, 2, row.ObserverCount)
	// (0.5 + 1.0) / 2
	assert.InDelta(t, 0.75, row.Progress, 1e-9)
}

func TestTaskTableNoProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	testutil.CreateTestTask(t, db, investigator, "fresh")

	repo := repository.NewPgTaskRepository(db)
	table, err := repo.Table(context.Background(), investigator)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, 0, table[0].ImageCount)
	assert.Equal(t, 0, table[0].ObserverCount)
	assert.Zero(t, table[0].Progress)
}

func TestQuickProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	alice := testutil.CreateTestUser(t, db, "Alice", "alice@example.org", model.Permissions{Enabled: true, Pathologist: true})
	bob := testutil.CreateTestUser(t, db, "Bob", "bob@example.org", model.Permissions{Enabled: true, Pathologist: true})

	images := make([]int64, 5)
	for i := range images {
		images[i] = testutil.CreateTestImage(t, db, investigator, string(rune('a'+i))+".png")
	}
	taskID := testutil.CreateTestTask(t, db, investigator, "quick")
	testutil.AssignTaskImages(t, db, taskID, images...)
	testutil.AssignObservers(t, db, taskID, alice, bob)

	// 10 rating rows over 5 images x 2 observers.
	for _, img := range images {
		testutil.SubmitTestRating(t, db, alice, img, taskID, model.RatingYes)
		testutil.SubmitTestRating(t, db, bob, img, taskID, model.RatingNo)
	}

	repo := repository.NewPgTaskRepository(db)
	progress, err := repo.QuickProgress(context.Background(), taskID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, progress, 1e-9)
}

func TestQuickProgressEmptyTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	taskID := testutil.CreateTestTask(t, db, investigator, "empty")

	repo := repository.NewPgTaskRepository(db)
	progress, err := repo.QuickProgress(context.Background(), taskID)
	require.NoError(t, err)
	assert.Zero(t, progress)
}

func TestObserversEligibilityAndAppliedFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	applied := testutil.CreateTestUser(t, db, "Applied", "applied@example.org", model.Permissions{Enabled: true, Pathologist: true})
	testutil.CreateTestUser(t, db, "Eligible", "eligible@example.org", model.Permissions{Enabled: true, Pathologist: true})
	// Disabled pathologists and non-pathologists never appear.
	testutil.CreateTestUser(t, db, "Disabled", "disabled@example.org", model.Permissions{Pathologist: true})
	testutil.CreateTestUser(t, db, "Uploader", "uploader@example.org", model.Permissions{Enabled: true, Uploader: true})

	taskID := testutil.CreateTestTask(t, db, investigator, "staffing")
	testutil.AssignObservers(t, db, taskID, applied)

	repo := repository.NewPgTaskRepository(db)
	observers, err := repo.Observers(context.Background(), taskID)
	require.NoError(t, err)
	require.Len(t, observers, 2)

	assert.Equal(t, "Applied", observers[0].Name)
	assert.True(t, observers[0].Applied)
	assert.Equal(t, "Eligible", observers[1].Name)
	assert.False(t, observers[1].Applied)
}
