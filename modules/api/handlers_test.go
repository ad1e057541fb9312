package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userdomain "github.com/example/task-planner/domain/user"
	"github.com/example/task-planner/modules/task"
	"github.com/gofiber/fiber/v2"
)

// mockTaskPort is an in-memory task store keyed by owner and ID.
type mockTaskPort struct {
	tasks  []task.TaskResponse
	nextID int
}

func (m *mockTaskPort) CreateTask(_ context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, newMockValidationErr()
	}
	m.nextID++
	now := time.Now()
	t := task.TaskResponse{
		ID:          fmt.Sprintf("task-%d", m.nextID),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      "pending",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks = append([]task.TaskResponse{t}, m.tasks...)
	return &t, nil
}

func (m *mockTaskPort) GetTask(_ context.Context, userID, taskID string) (*task.TaskResponse, error) {
	for _, t := range m.tasks {
		if t.ID == taskID && t.UserID == userID {
			return &t, nil
		}
	}
	return nil, task.ErrTaskNotFound
}

func (m *mockTaskPort) ListTasks(_ context.Context, req *task.ListTasksRequest) (*task.ListTasksResponse, error) {
	out := make([]task.TaskResponse, 0)
	for _, t := range m.tasks {
		if t.UserID != req.UserID {
			continue
		}
		if req.Status != "" && req.Status != "all" && t.Status != req.Status {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, t)
	}
	return &task.ListTasksResponse{Tasks: out, Total: len(out)}, nil
}

func (m *mockTaskPort) UpdateTask(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
	for i, t := range m.tasks {
		if t.ID == req.TaskID && t.UserID == req.UserID {
			if req.Title != nil {
				m.tasks[i].Title = *req.Title
			}
			if req.Description != nil {
				m.tasks[i].Description = *req.Description
			}
			if req.Status != nil {
				m.tasks[i].Status = *req.Status
			}
			return &m.tasks[i], nil
		}
	}
	return nil, task.ErrTaskNotFound
}

func (m *mockTaskPort) DeleteTask(_ context.Context, userID, taskID string) error {
	for i, t := range m.tasks {
		if t.ID == taskID && t.UserID == userID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return task.ErrTaskNotFound
}

func newMockValidationErr() error {
	return &task.ValidationError{Fields: []task.FieldError{{Field: "title", Message: "Title is required"}}}
}

// setupTaskApp builds a Fiber app exposing the task routes, backed by
// the mock store, with a middleware that always authenticates user-1.
func setupTaskApp(store *mockTaskPort) *fiber.App {
	handlers := NewHandlers(nil, store)

	app := fiber.New(fiber.Config{ErrorHandler: customErrorHandler})
	tasks := app.Group("/api/tasks")
	tasks.Use(func(c *fiber.Ctx) error {
		c.Locals(UserContextKey, &userdomain.Claims{UserID: "user-1", Username: "alice"})
		return c.Next()
	})
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

func TestCreateTaskHandler(t *testing.T) {
	t.Run("valid task returns 201", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})

		resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Buy milk","description":"2 liters"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		created := decodeBody[TaskResponse](t, resp)
		if created.Title != "Buy milk" {
			t.Errorf("title = %q, want %q", created.Title, "Buy milk")
		}
		if created.Status != "pending" {
			t.Errorf("status = %q, want %q", created.Status, "pending")
		}
		if created.UserID != "user-1" {
			t.Errorf("user_id = %q, want %q", created.UserID, "user-1")
		}
	})

	t.Run("empty title returns structured 400", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})

		resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"   "}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		body := decodeBody[ValidationErrorResponse](t, resp)
		if body.Error != "validation_error" {
			t.Errorf("error = %q, want %q", body.Error, "validation_error")
		}
		if len(body.Errors) != 1 || body.Errors[0].Field != "title" {
			t.Errorf("expected one field error naming title, got %+v", body.Errors)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})

		resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
		resp.Body.Close()
	})
}

func TestListTasksHandler(t *testing.T) {
	store := &mockTaskPort{}
	app := setupTaskApp(store)

	doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Walk the dog"}`).Body.Close()
	doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Water plants"}`).Body.Close()

	t.Run("returns a bare array", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/tasks/", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		tasks := decodeBody[[]TaskResponse](t, resp)
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		// Newest first per store ordering
		if tasks[0].Title != "Water plants" {
			t.Errorf("first task = %q, want %q", tasks[0].Title, "Water plants")
		}
	})

	t.Run("search query narrows results", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/tasks/?search=dog", "")
		tasks := decodeBody[[]TaskResponse](t, resp)
		if len(tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(tasks))
		}
		if tasks[0].Title != "Walk the dog" {
			t.Errorf("task = %q, want %q", tasks[0].Title, "Walk the dog")
		}
	})

	t.Run("empty store yields empty array", func(t *testing.T) {
		empty := setupTaskApp(&mockTaskPort{})
		resp := doJSON(t, empty, http.MethodGet, "/api/tasks/", "")
		tasks := decodeBody[[]TaskResponse](t, resp)
		if tasks == nil {
			t.Error("expected empty array, got null")
		}
		if len(tasks) != 0 {
			t.Errorf("expected 0 tasks, got %d", len(tasks))
		}
	})
}

func TestGetTaskHandler(t *testing.T) {
	store := &mockTaskPort{}
	app := setupTaskApp(store)

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Read"}`)
	created := decodeBody[TaskResponse](t, resp)

	t.Run("existing task", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/tasks/"+created.ID, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		got := decodeBody[TaskResponse](t, resp)
		if got.ID != created.ID {
			t.Errorf("id = %q, want %q", got.ID, created.ID)
		}
	})

	t.Run("missing task returns 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/tasks/unknown", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		body := decodeBody[ErrorResponse](t, resp)
		if body.Error != "not_found" {
			t.Errorf("error = %q, want %q", body.Error, "not_found")
		}
	})
}

func TestUpdateTaskHandler(t *testing.T) {
	store := &mockTaskPort{}
	app := setupTaskApp(store)

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Original"}`)
	created := decodeBody[TaskResponse](t, resp)

	t.Run("partial update", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/tasks/"+created.ID, `{"status":"completed"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		got := decodeBody[TaskResponse](t, resp)
		if got.Status != "completed" {
			t.Errorf("status = %q, want %q", got.Status, "completed")
		}
		if got.Title != "Original" {
			t.Errorf("title = %q, want untouched %q", got.Title, "Original")
		}
	})

	t.Run("invalid status returns 400", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/tasks/"+created.ID, `{"status":"archived"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
		body := decodeBody[ValidationErrorResponse](t, resp)
		if len(body.Errors) != 1 || body.Errors[0].Field != "status" {
			t.Errorf("expected one field error naming status, got %+v", body.Errors)
		}
	})

	t.Run("empty title returns 400", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/tasks/"+created.ID, `{"title":""}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
		resp.Body.Close()
	})

	t.Run("missing task returns 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/tasks/unknown", `{"title":"New"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		resp.Body.Close()
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	store := &mockTaskPort{}
	app := setupTaskApp(store)

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", `{"title":"Temporary"}`)
	created := decodeBody[TaskResponse](t, resp)

	t.Run("delete returns confirmation", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/api/tasks/"+created.ID, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		body := decodeBody[MessageResponse](t, resp)
		if body.Message != "Task deleted successfully" {
			t.Errorf("message = %q, want %q", body.Message, "Task deleted successfully")
		}
	})

	t.Run("second delete returns 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/api/tasks/"+created.ID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		resp.Body.Close()
	})
}
