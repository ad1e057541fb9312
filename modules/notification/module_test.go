package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-planner/events"
)

func TestNotificationFeed(t *testing.T) {
	m := NewModule()
	ctx := context.Background()

	err := m.handleTaskCreated(ctx, events.TaskCreatedEvent{
		TaskID:    "task-1",
		UserID:    "user-1",
		Title:     "Buy milk",
		CreatedAt: time.Now(),
	}, nil)
	if err != nil {
		t.Fatalf("handleTaskCreated() error = %v", err)
	}

	err = m.handleTaskCompleted(ctx, events.TaskCompletedEvent{
		TaskID:      "task-1",
		UserID:      "user-1",
		Title:       "Buy milk",
		CompletedAt: time.Now(),
	}, nil)
	if err != nil {
		t.Fatalf("handleTaskCompleted() error = %v", err)
	}

	err = m.handleTaskDeleted(ctx, events.TaskDeletedEvent{
		TaskID:    "task-1",
		UserID:    "user-1",
		DeletedAt: time.Now(),
	}, nil)
	if err != nil {
		t.Fatalf("handleTaskDeleted() error = %v", err)
	}

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantKinds := []string{"task_created", "task_completed", "task_deleted"}
	for i, kind := range wantKinds {
		if entries[i].Kind != kind {
			t.Errorf("entry %d kind = %q, want %q", i, entries[i].Kind, kind)
		}
		if entries[i].TaskID != "task-1" {
			t.Errorf("entry %d task ID = %q, want %q", i, entries[i].TaskID, "task-1")
		}
	}
}

func TestNotificationFeedIsBounded(t *testing.T) {
	m := NewModule()
	ctx := context.Background()

	for i := 0; i < maxEntries+50; i++ {
		event := events.TaskCreatedEvent{
			TaskID:    fmt.Sprintf("task-%d", i),
			UserID:    "user-1",
			Title:     "Flood",
			CreatedAt: time.Now(),
		}
		if err := m.handleTaskCreated(ctx, event, nil); err != nil {
			t.Fatalf("handleTaskCreated() error = %v", err)
		}
	}

	entries := m.Entries()
	if len(entries) != maxEntries {
		t.Fatalf("expected feed capped at %d, got %d", maxEntries, len(entries))
	}
	// Oldest entries dropped first
	if entries[0].TaskID != "task-50" {
		t.Errorf("expected oldest retained entry task-50, got %q", entries[0].TaskID)
	}
}

func TestEntriesReturnsACopy(t *testing.T) {
	m := NewModule()

	if err := m.handleTaskCreated(context.Background(), events.TaskCreatedEvent{
		TaskID: "task-1",
		UserID: "user-1",
		Title:  "Original",
	}, nil); err != nil {
		t.Fatalf("handleTaskCreated() error = %v", err)
	}

	got := m.Entries()
	got[0].Message = "Mutated"

	if m.Entries()[0].Message == "Mutated" {
		t.Error("mutating the returned slice must not affect the feed")
	}
}
