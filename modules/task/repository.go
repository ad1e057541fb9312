package task

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/task-planner/domain/task"
	"gorm.io/gorm"
)

// ListFilter narrows a FindAll query. A zero Status means no status
// filter; an empty Search matches everything.
type ListFilter struct {
	Status domain.Status
	Search string
}

// Repository provides owner-scoped access to task storage using GORM.
// Every query is filtered by user ID; a row owned by another user is
// indistinguishable from a missing row.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task to the database.
func (r *Repository) Create(t *domain.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves the task with the given ID owned by userID.
func (r *Repository) FindByID(userID, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindAll retrieves the owner's tasks matching the filter, newest first.
// An empty result is returned as an empty slice, never an error.
func (r *Repository) FindAll(userID string, filter ListFilter) ([]*domain.Task, error) {
	query := r.db.Where("user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var tasks []*domain.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Update persists the mutable fields of an existing owned task. The
// Select clause forces zero values (an emptied description) through.
func (r *Repository) Update(t *domain.Task) error {
	result := r.db.Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Select("title", "description", "status", "updated_at").
		Updates(t)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete permanently removes the owned task with the given ID. There is
// no soft delete; a second delete of the same ID reports ErrTaskNotFound.
func (r *Repository) Delete(userID, id string) error {
	result := r.db.Where("user_id = ?", userID).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
