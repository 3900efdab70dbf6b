package tasks

import (
	"encoding/json"
	"testing"
)

func TestAssignee_Unmarshal(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		AssignedTo Assignee `json:"assignedTo"`
	}

	tests := []struct {
		name    string
		in      string
		wantAll bool
		wantID  *uint
		wantErr bool
	}{
		{name: "all keyword", in: `{"assignedTo":"all"}`, wantAll: true},
		{name: "numeric id", in: `{"assignedTo":7}`, wantID: ptr(uint(7))},
		{name: "numeric string", in: `{"assignedTo":"7"}`, wantID: ptr(uint(7))},
		{name: "null", in: `{"assignedTo":null}`},
		{name: "absent", in: `{}`},
		{name: "empty string", in: `{"assignedTo":""}`},
		{name: "garbage", in: `{"assignedTo":"everyone"}`, wantErr: true},
		{name: "negative", in: `{"assignedTo":-1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w wrapper
			err := json.Unmarshal([]byte(tt.in), &w)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", w.AssignedTo)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.AssignedTo.All != tt.wantAll {
				t.Fatalf("All = %v, want %v", w.AssignedTo.All, tt.wantAll)
			}
			if (w.AssignedTo.ID == nil) != (tt.wantID == nil) {
				t.Fatalf("ID = %v, want %v", w.AssignedTo.ID, tt.wantID)
			}
			if tt.wantID != nil && *w.AssignedTo.ID != *tt.wantID {
				t.Fatalf("ID = %d, want %d", *w.AssignedTo.ID, *tt.wantID)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
