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

func TestTotalsZeroRatings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	taskID := testutil.CreateTestTask(t, db, investigator, "empty-task")

	repo := repository.NewPgRatingRepository(db)

	// Both the all-tasks scope and the single-task scope must yield
	// zeros, not nulls, when nothing has been graded.
	for _, taskFilter := range []*int64{nil, &taskID} {
		totals, err := repo.Totals(context.Background(), investigator, taskFilter)
		require.NoError(t, err)
		assert.Equal(t, &model.RatingTotals{Total: 0, Yes: 0, No: 0, Maybe: 0}, totals)
	}
}

func TestTotalsCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	grader := testutil.CreateTestUser(t, db, "Grader", "grader@example.org", model.Permissions{Enabled: true, Pathologist: true})
	img := testutil.CreateTestImage(t, db, investigator, "a.png")
	taskID := testutil.CreateTestTask(t, db, investigator, "task-a")
	otherTask := testutil.CreateTestTask(t, db, investigator, "task-b")

	testutil.SubmitTestRating(t, db, grader, img, taskID, model.RatingYes)
	testutil.SubmitTestRating(t, db, grader, img, taskID, model.RatingYes)
	testutil.SubmitTestRating(t, db, grader, img, taskID, model.RatingNo)
	testutil.SubmitTestRating(t, db, grader, img, taskID, model.RatingMaybe)
	testutil.SubmitTestRating(t, db, grader, img, otherTask, model.RatingNo)

	repo := repository.NewPgRatingRepository(db)
	ctx := context.Background()

	totals, err := repo.Totals(ctx, investigator, &taskID)
	require.NoError(t, err)
	assert.Equal(t, &model.RatingTotals{Total: 4, Yes: 2, No: 1, Maybe: 1}, totals)

	// nil task filter covers every task the investigator owns.
	all, err := repo.Totals(ctx, investigator, nil)
	require.NoError(t, err)
	assert.Equal(t, &model.RatingTotals{Total: 5, Yes: 2, No: 2, Maybe: 1}, all)

	// A different investigator owns none of these tasks.
	other := testutil.CreateTestUser(t, db, "Other", "other@example.org", model.Permissions{Enabled: true})
	none, err := repo.Totals(ctx, other, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total)
}

func TestTotalsPerUserAndPerImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	alice := testutil.CreateTestUser(t, db, "Alice", "alice@example.org", model.Permissions{Enabled: true, Pathologist: true})
	bob := testutil.CreateTestUser(t, db, "Bob", "bob@example.org", model.Permissions{Enabled: true, Pathologist: true})
	img1 := testutil.CreateTestImage(t, db, investigator, "one.png")
	img2 := testutil.CreateTestImage(t, db, investigator, "two.png")
	taskID := testutil.CreateTestTask(t, db, investigator, "per-user")

	testutil.SubmitTestRating(t, db, alice, img1, taskID, model.RatingYes)
	testutil.SubmitTestRating(t, db, alice, img2, taskID, model.RatingNo)
	testutil.SubmitTestRating(t, db, bob, img1, taskID, model.RatingMaybe)

	repo := repository.NewPgRatingRepository(db)
	ctx := context.Background()

	perUser, err := repo.TotalsPerUser(ctx, investigator, &taskID)
	require.NoError(t, err)
	require.Len(t, perUser, 2)
	assert.Equal(t, "Alice", perUser[0].Fullname)
	assert.Equal(t, 2, perUser[0].Total)
	assert.Equal(t, 1, perUser[0].Yes)
	assert.Equal(t, 1, perUser[0].No)
	assert.Equal(t, "Bob", perUser[1].Fullname)
	assert.Equal(t, 1, perUser[1].Maybe)

	perImage, err := repo.TotalsPerImage(ctx, investigator, &taskID)
	require.NoError(t, err)
	require.Len(t, perImage, 2)
	assert.Equal(t, "one.png", perImage[0].Path)
	assert.Equal(t, 2, perImage[0].Total)
	assert.Equal(t, "two.png", perImage[1].Path)
	assert.Equal(t, 1, perImage[1].Total)
}

func TestExportIncludesUngradedAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	grader := testutil.CreateTestUser(t, db, "Grader", "grader@example.org", model.Permissions{Enabled: true, Pathologist: true})
	graded := testutil.CreateTestImage(t, db, investigator, "graded.png")
	ungraded := testutil.CreateTestImage(t, db, investigator, "ungraded.png")
	taskID := testutil.CreateTestTask(t, db, investigator, "export")
	testutil.AssignTaskImages(t, db, taskID, graded, ungraded)

	testutil.SubmitTestRating(t, db, grader, graded, taskID, model.RatingYes)

	repo := repository.NewPgRatingRepository(db)
	rows, err := repo.Export(context.Background(), taskID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byImage := map[int64]model.ExportRow{}
	for _, row := range rows {
		byImage[row.ImageID] = row
	}
	require.NotNil(t, byImage[graded].Rating)
	assert.Equal(t, model.RatingYes, *byImage[graded].Rating)
	assert.Nil(t, byImage[ungraded].Rating, "assigned but ungraded image must still appear")
	assert.Nil(t, byImage[ungraded].ObserverID)
}
