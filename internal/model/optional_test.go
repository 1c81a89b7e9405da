package model

import (
	"encoding/json"
	"testing"
)

func TestTaskPatchFieldPresence(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"status":"done"}`), &patch); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if !patch.Status.Set || !patch.Status.Valid {
		t.Error("status should be set and valid")
	}
	if patch.Status.Value != StatusDone {
		t.Errorf("status = %q, want %q", patch.Status.Value, StatusDone)
	}
	if patch.Title.Set || patch.Priority.Set || patch.Deadline.Set {
		t.Error("absent fields should not be marked set")
	}
}

func TestTaskPatchExplicitNullDeadline(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"deadline":null}`), &patch); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if !patch.Deadline.Set {
		t.Error("explicit null deadline should be marked set")
	}
	if patch.Deadline.Valid {
		t.Error("explicit null deadline should not be valid")
	}
}

func TestTaskPatchIsZero(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{}`), &patch); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if !patch.IsZero() {
		t.Error("empty patch should be zero")
	}

	patch.Title = Some("new title")
	if patch.IsZero() {
		t.Error("patch with a title should not be zero")
	}
}

func TestStatusValidAndRank(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
		rank   int
	}{
		{StatusTodo, true, 0},
		{StatusInProgress, true, 1},
		{StatusDone, true, 2},
		{Status("cancelled"), false, 0},
		{Status(""), false, 0},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.valid)
		}
		if got := tt.status.Rank(); got != tt.rank {
			t.Errorf("Status(%q).Rank() = %d, want %d", tt.status, got, tt.rank)
		}
	}
}
