package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func testManifest(t *testing.T, ids ...string) *RunManifest {
	t.Helper()
	m, err := NewRunManifest("2026-05-11T09-30-00_cats", RunParams{Keyword: "cats", Count: len(ids)}, time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	base := time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC)
	for i, id := range ids {
		rec, err := NewImageRecord(m.RunID, id, "prompt for "+id,
			"output/"+m.RunID+"/generated_images/"+id+".png", base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := m.Add(rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	return m
}

func TestManifestAdd(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000")

	rec, _ := NewImageRecord(m.RunID, "img_000", "p", "output/x/generated_images/img_000.png", time.Now())
	if err := m.Add(rec); err != ErrDuplicateRecord {
		t.Errorf("Expected error %v, got %v", ErrDuplicateRecord, err)
	}

	if _, err := NewRunManifest("run", RunParams{}, time.Now()); err != ErrEmptyKeyword {
		t.Errorf("Expected error %v, got %v", ErrEmptyKeyword, err)
	}
}

func TestApplyTransitionEmptySetIsNoOp(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000", "img_001")
	before := m.Clone()

	if err := m.ApplyTransition(nil, StatusRegistered, time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(m, before) {
		t.Error("Expected manifest unchanged after empty transition set")
	}
}

func TestApplyTransitionIgnoresUnknownIDs(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000")

	err := m.ApplyTransition([]string{"img_000", "no_such_id"}, StatusExcluded, time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Records["img_000"].Status != StatusExcluded {
		t.Errorf("Expected img_000 excluded, got %s", m.Records["img_000"].Status)
	}
}

func TestApplyTransitionRejectsDisallowedEdge(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000", "img_001")
	if err := m.ApplyTransition([]string{"img_000"}, StatusRegistered, time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	before := m.Clone()

	// img_000 is registered; registered -> excluded must go through
	// unprocessed, and the whole call must leave the manifest unchanged.
	err := m.ApplyTransition([]string{"img_001", "img_000"}, StatusExcluded, time.Now())

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}
	if invalid.ID != "img_000" || invalid.From != StatusRegistered || invalid.To != StatusExcluded {
		t.Errorf("Unexpected error detail: %+v", invalid)
	}
	if !reflect.DeepEqual(m, before) {
		t.Error("Expected manifest unchanged after rejected transition")
	}
}

func TestApplyTransitionSameStatusKeepsTimestamp(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000")
	stamp := m.Records["img_000"].StatusChangedAt

	err := m.ApplyTransition([]string{"img_000"}, StatusUnprocessed, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !m.Records["img_000"].StatusChangedAt.Equal(stamp) {
		t.Error("Expected StatusChangedAt untouched for a same-status transition")
	}
}

func TestListByStatusOrdering(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_002", "img_000", "img_001")

	// All records share the run but were created one second apart in
	// insertion order: img_002 first, then img_000, then img_001.
	got := m.ListByStatus(StatusUnprocessed)
	want := []string{"img_002", "img_000", "img_001"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i, rec := range got {
		if rec.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], rec.ID)
		}
	}

	// Repeated calls return the same order.
	again := m.ListByStatus(StatusUnprocessed)
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Fatal("Expected stable ordering across calls")
		}
	}

	if n := len(m.ListByStatus(StatusRegistered)); n != 0 {
		t.Errorf("Expected no registered records, got %d", n)
	}
}

func TestListByStatusTieBreaksOnID(t *testing.T) {
	t.Parallel()
	m, err := NewRunManifest("run_tie", RunParams{Keyword: "tie"}, time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	same := time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC)
	for _, id := range []string{"img_002", "img_000", "img_001"} {
		rec, _ := NewImageRecord(m.RunID, id, "p", "output/run_tie/generated_images/"+id+".png", same)
		if err := m.Add(rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	got := m.ListByStatus(StatusUnprocessed)
	want := []string{"img_000", "img_001", "img_002"}
	for i, rec := range got {
		if rec.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], rec.ID)
		}
	}
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000", "img_001", "img_002")
	if err := m.ApplyTransition([]string{"img_001"}, StatusExcluded, time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	counts := m.CountByStatus()
	if counts[StatusUnprocessed] != 2 || counts[StatusExcluded] != 1 || counts[StatusRegistered] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestManifestClone(t *testing.T) {
	t.Parallel()
	m := testManifest(t, "img_000")
	cp := m.Clone()

	if err := cp.ApplyTransition([]string{"img_000"}, StatusExcluded, time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Records["img_000"].Status != StatusUnprocessed {
		t.Error("Clone shares records with original")
	}
}
