package service_test

import (
	"context"
	"testing"

	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateObserversReplacesWholesale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	alice := testutil.CreateTestUser(t, db, "Alice", "alice@example.org", model.Permissions{Enabled: true, Pathologist: true})
	bob := testutil.CreateTestUser(t, db, "Bob", "bob@example.org", model.Permissions{Enabled: true, Pathologist: true})
	taskID := testutil.CreateTestTask(t, db, investigator, "staffing")
	testutil.AssignObservers(t, db, taskID, alice)

	svc := service.NewTaskService(repository.NewPgTaskRepository(db), db)
	ctx := context.Background()

	// The new set fully replaces the old one, no merging.
	require.NoError(t, svc.UpdateObservers(ctx, taskID, []int64{bob}))
	observers, err := svc.Observers(ctx, taskID)
	require.NoError(t, err)
	var applied []int64
	for _, o := range observers {
		if o.Applied {
			applied = append(applied, o.ID)
		}
	}
	assert.Equal(t, []int64{bob}, applied)

	// Empty set clears every assignment.
	require.NoError(t, svc.UpdateObservers(ctx, taskID, []int64{}))
	assert.Equal(t, 0, testutil.CountRows(t, db, "observers"))
}

func TestUpdateTaskImagesRollsBackAtomically(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	img := testutil.CreateTestImage(t, db, investigator, "a.png")
	taskID := testutil.CreateTestTask(t, db, investigator, "images")
	testutil.AssignTaskImages(t, db, taskID, img)

	svc := service.NewTaskService(repository.NewPgTaskRepository(db), db)

	// One nonexistent image id fails the insert; the delete must be
	// rolled back with it, keeping the original assignment.
	err := svc.UpdateTaskImages(context.Background(), taskID, []int64{img, 999999})
	require.Error(t, err)
	assert.Equal(t, 1, testutil.CountRows(t, db, "task_images"))
}

func TestCreateAndDeleteTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	svc := service.NewTaskService(repository.NewPgTaskRepository(db), db)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, investigator, service.TaskRequest{ShortName: "necrosis", Prompt: "Necrotic tissue?"})
	require.NoError(t, err)
	require.NotZero(t, task.ID)
	assert.Equal(t, investigator, task.Investigator)

	owned, err := svc.ListOwned(ctx, investigator)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	require.NoError(t, svc.DeleteTask(ctx, investigator, task.ID))
	owned, err = svc.ListOwned(ctx, investigator)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestDeleteTaskCascadesAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	investigator := testutil.CreateTestUser(t, db, "Investigator", "inv@example.org", model.Permissions{Enabled: true})
	grader := testutil.CreateTestUser(t, db, "Grader", "grader@example.org", model.Permissions{Enabled: true, Pathologist: true})
	img := testutil.CreateTestImage(t, db, investigator, "a.png")
	taskID := testutil.CreateTestTask(t, db, investigator, "doomed")
	testutil.AssignTaskImages(t, db, taskID, img)
	testutil.AssignObservers(t, db, taskID, grader)

	svc := service.NewTaskService(repository.NewPgTaskRepository(db), db)
	require.NoError(t, svc.DeleteTask(context.Background(), investigator, taskID))

	assert.Equal(t, 0, testutil.CountRows(t, db, "task_images"))
	assert.Equal(t, 0, testutil.CountRows(t, db, "observers"))
	// The images themselves survive the task.
	assert.Equal(t, 1, testutil.CountRows(t, db, "images"))
}
