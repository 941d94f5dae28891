package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T10:15:00Z"`, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{`"2024-03-01T12:15:00+02:00"`, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{`"2024-03-01T10:15:00"`, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{`"2024-03-01T10:15:00.1234567"`, time.Date(2024, 3, 1, 10, 15, 0, 123456700, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tc := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tc.in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if !ts.Time.Equal(tc.want) {
			t.Errorf("unmarshal %s: got %v, want %v", tc.in, ts.Time, tc.want)
		}
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatal("expected an error for an unknown layout")
	}
}

func TestWorkItemDecode(t *testing.T) {
	input := `{
		"id": 7,
		"title": "Pay rent",
		"description": "October",
		"status": "InProgress",
		"priority": "High",
		"createdAt": "2024-10-01T08:00:00",
		"updatedAt": "2024-10-02T09:30:00Z"
	}`
	var it WorkItem
	if err := json.Unmarshal([]byte(input), &it); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if it.ID != 7 || it.Title != "Pay rent" || it.Status != StatusInProgress || it.Priority != PriorityHigh {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.UpdatedAt.Day() != 2 {
		t.Errorf("expected updatedAt day 2, got %v", it.UpdatedAt.Time)
	}
}

func TestPatchOmitsNilFields(t *testing.T) {
	p := WorkItemPatch{Status: StringPtr(StatusCompleted)}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"status":"Completed"}` {
		t.Errorf("unexpected body %s", b)
	}
	if p.Empty() {
		t.Error("patch with a status should not be empty")
	}
	if !(WorkItemPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}

	it := WorkItem{Title: "a", Status: StatusPending}
	p.Apply(&it)
	if it.Status != StatusCompleted || it.Title != "a" {
		t.Errorf("apply changed the wrong fields: %+v", it)
	}
}
