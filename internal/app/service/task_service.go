package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
)

type TaskService struct {
	taskRepo repository.TaskRepository
	db       *sql.DB
}

func NewTaskService(taskRepo repository.TaskRepository, db *sql.DB) *TaskService {
	return &TaskService{taskRepo: taskRepo, db: db}
}

type TaskRequest struct {
	ShortName string `json:"short_name"`
	Prompt    string `json:"prompt"`
}

func (s *TaskService) ListOwned(ctx context.Context, investigatorID int64) ([]model.Task, error) {
	return s.taskRepo.ListByInvestigator(ctx, investigatorID)
}

func (s *TaskService) ListAssigned(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.taskRepo.ListAssigned(ctx, userID)
}

func (s *TaskService) CreateTask(ctx context.Context, investigatorID int64, req TaskRequest) (*model.Task, error) {
	if req.ShortName == "" {
		return nil, fmt.Errorf("short_name is required: %w", common.ErrBadRequest)
	}
	task := &model.Task{
		ShortName:    req.ShortName,
		Prompt:       req.Prompt,
		Investigator: investigatorID,
	}
	if _, err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, investigatorID, taskID int64, req TaskRequest) error {
	task := &model.Task{ID: taskID, ShortName: req.ShortName, Prompt: req.Prompt}
	return s.taskRepo.Update(ctx, investigatorID, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, investigatorID, taskID int64) error {
	return s.taskRepo.Delete(ctx, investigatorID, taskID)
}

func (s *TaskService) Table(ctx context.Context, investigatorID int64) ([]model.TaskTableRow, error) {
	return s.taskRepo.Table(ctx, investigatorID)
}

func (s *TaskService) QuickProgress(ctx context.Context, taskID int64) (float64, error) {
	return s.taskRepo.QuickProgress(ctx, taskID)
}

func (s *TaskService) Observers(ctx context.Context, taskID int64) ([]model.Observer, error) {
	return s.taskRepo.Observers(ctx, taskID)
}

// UpdateObservers replaces the task's observer set wholesale. An empty
// list is valid and leaves the task with no observers.
func (s *TaskService) UpdateObservers(ctx context.Context, taskID int64, userIDs []int64) error {
	return s.replaceAll(ctx, taskID, userIDs, s.taskRepo.DeleteObservers, s.taskRepo.AddObservers)
}

func (s *TaskService) TaskTags(ctx context.Context, investigatorID, taskID int64) ([]model.TaskTag, error) {
	return s.taskRepo.TaskTags(ctx, investigatorID, taskID)
}

func (s *TaskService) UpdateTaskTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	return s.replaceAll(ctx, taskID, tagIDs, s.taskRepo.DeleteTaskTags, s.taskRepo.AddTaskTags)
}

func (s *TaskService) PickerImages(ctx context.Context, investigatorID, taskID int64) ([]model.TaskPickerImage, error) {
	return s.taskRepo.PickerImages(ctx, investigatorID, taskID)
}

func (s *TaskService) UpdateTaskImages(ctx context.Context, taskID int64, imageIDs []int64) error {
	return s.replaceAll(ctx, taskID, imageIDs, s.taskRepo.DeleteTaskImages, s.taskRepo.AddTaskImages)
}

// replaceAll runs a delete-then-insert association swap in one
// transaction; a failure between the steps rolls back to the pre-call
// state.
func (s *TaskService) replaceAll(
	ctx context.Context,
	taskID int64,
	ids []int64,
	deleteFn func(context.Context, *sql.Tx, int64) error,
	addFn func(context.Context, *sql.Tx, int64, []int64) error,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := deleteFn(ctx, tx, taskID); err != nil {
		return err
	}
	if err := addFn(ctx, tx, taskID, ids); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
