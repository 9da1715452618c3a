package domain

import (
	"testing"
	"time"
)

func TestNewImageRecord(t *testing.T) {
	t.Parallel()
	created := time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC)

	rec, err := NewImageRecord("2026-05-11T09-30-00_cats", "img_000", "a cat on a windowsill",
		"output/2026-05-11T09-30-00_cats/generated_images/img_000.png", created)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Status != StatusUnprocessed {
		t.Errorf("Expected status %s, got %s", StatusUnprocessed, rec.Status)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt %v, got %v", created, rec.CreatedAt)
	}
	if !rec.StatusChangedAt.Equal(created) {
		t.Errorf("Expected StatusChangedAt %v, got %v", created, rec.StatusChangedAt)
	}
	if rec.UpscaledPath != "" {
		t.Errorf("Expected empty UpscaledPath on a new record, got %q", rec.UpscaledPath)
	}
	if rec.Metadata != nil {
		t.Error("Expected nil Metadata on a new record")
	}

	// Missing ID
	_, err = NewImageRecord("run", "", "p", "output/run/generated_images/x.png", created)
	if err != ErrEmptyRecordID {
		t.Errorf("Expected error %v, got %v", ErrEmptyRecordID, err)
	}

	// Missing run ID
	_, err = NewImageRecord("", "img_000", "p", "output/run/generated_images/x.png", created)
	if err != ErrEmptyRunID {
		t.Errorf("Expected error %v, got %v", ErrEmptyRunID, err)
	}

	// Missing source path
	_, err = NewImageRecord("run", "img_000", "p", "", created)
	if err != ErrEmptySourcePath {
		t.Errorf("Expected error %v, got %v", ErrEmptySourcePath, err)
	}
}

func TestImageStatusValid(t *testing.T) {
	t.Parallel()
	for _, s := range []ImageStatus{StatusUnprocessed, StatusRegistered, StatusExcluded} {
		if !s.Valid() {
			t.Errorf("Expected %s to be valid", s)
		}
	}
	for _, s := range []ImageStatus{"", "pending", "REGISTERED", "done"} {
		if s.Valid() {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		from    ImageStatus
		to      ImageStatus
		allowed bool
	}{
		{"unprocessed to registered", StatusUnprocessed, StatusRegistered, true},
		{"unprocessed to excluded", StatusUnprocessed, StatusExcluded, true},
		{"registered to unprocessed", StatusRegistered, StatusUnprocessed, true},
		{"excluded to unprocessed", StatusExcluded, StatusUnprocessed, true},
		{"registered to excluded", StatusRegistered, StatusExcluded, false},
		{"excluded to registered", StatusExcluded, StatusRegistered, false},
		{"same status no-op", StatusRegistered, StatusRegistered, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanTransition(tc.from, tc.to); got != tc.allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestRecordClone(t *testing.T) {
	t.Parallel()
	created := time.Now().UTC()
	rec, err := NewImageRecord("run", "img_001", "prompt", "output/run/generated_images/img_001.png", created)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	rec.Metadata = &Metadata{Title: "t", Category: 8, Tags: []string{"a", "b"}}

	cp := rec.Clone()
	cp.Metadata.Tags[0] = "mutated"
	cp.Metadata.Title = "changed"

	if rec.Metadata.Tags[0] != "a" {
		t.Error("Clone shares tag slice with original")
	}
	if rec.Metadata.Title != "t" {
		t.Error("Clone shares metadata struct with original")
	}
}
