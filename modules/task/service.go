package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/task-planner/domain/task"
	"github.com/example/task-planner/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// createTask handles the task.create service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.UserID == "" {
		return TaskResponse{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return TaskResponse{}, newValidationError("title", "Title is required")
	}

	now := time.Now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.repo.Create(t); err != nil {
		return TaskResponse{}, fmt.Errorf("failed to save task: %w", err)
	}

	m.invalidateListCache(ctx, req.UserID)

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			UserID:    t.UserID,
			CreatedAt: t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
		}
	}

	return toTaskResponse(t), nil
}

// getTask handles the task.get service request.
func (m *TaskModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.FindByID(req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t), nil
}

// listTasks handles the task.list service request. Results are served
// from the Redis cache when one is wired in; cache entries are scoped
// per owner and invalidated on every mutation.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	filter := ListFilter{Search: req.Search}
	if req.Status != "" && req.Status != "all" {
		filter.Status = domain.Status(req.Status)
	}

	cacheKey := listCacheKey(req.UserID, req.Status, req.Search)
	if m.cache != nil {
		var cached ListTasksResponse
		hit, err := m.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.Printf("[task] Warning: cache read failed for %s: %v", cacheKey, err)
		} else if hit {
			return cached, nil
		}
	}

	tasks, err := m.repo.FindAll(req.UserID, filter)
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, t := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(t))
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, cacheKey, response); err != nil {
			log.Printf("[task] Warning: cache write failed for %s: %v", cacheKey, err)
		}
	}

	return response, nil
}

// updateTask handles the task.update service request. Nil fields are
// left untouched; present fields fully replace the stored value.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return TaskResponse{}, newValidationError("title", "Title cannot be empty")
	}
	if req.Status != nil && !domain.Status(*req.Status).Valid() {
		return TaskResponse{}, newValidationError("status", "Invalid status")
	}

	t, err := m.repo.FindByID(req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}

	wasPending := t.Status == domain.StatusPending

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = domain.Status(*req.Status)
	}
	t.UpdatedAt = time.Now()

	if err := m.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	m.invalidateListCache(ctx, req.UserID)

	if m.eventBus != nil && wasPending && t.Status == domain.StatusCompleted {
		event := events.TaskCompletedEvent{
			TaskID:      t.ID,
			Title:       t.Title,
			UserID:      t.UserID,
			CompletedAt: t.UpdatedAt,
		}
		if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", t.ID, err)
		}
	}

	return toTaskResponse(t), nil
}

// deleteTask handles the task.delete service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.repo.Delete(req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false, ID: req.TaskID}, err
	}

	m.invalidateListCache(ctx, req.UserID)

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			UserID:    req.UserID,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", req.TaskID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true, ID: req.TaskID}, nil
}

// listCacheKey builds the cache key for one owner's list query.
func listCacheKey(userID, status, search string) string {
	return fmt.Sprintf("list:%s:%s:%s", userID, status, strings.ToLower(search))
}

// invalidateListCache drops every cached list for the owner. Invalidation
// is best-effort; a failure only means a stale read until the TTL expires.
func (m *TaskModule) invalidateListCache(ctx context.Context, userID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.DeletePattern(ctx, "list:"+userID+":*"); err != nil {
		log.Printf("[task] Warning: cache invalidation failed for user %s: %v", userID, err)
	}
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
