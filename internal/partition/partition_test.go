package partition

import "testing"

func TestSingleWorkerBasic(t *testing.T) {
	parts, err := Partition(0, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0] != (Part{Index: 0, Start: 0, End: 10}) {
		t.Fatalf("unexpected part: %+v", parts[0])
	}
}

func TestEvenPartition(t *testing.T) {
	parts, err := Partition(0, 12, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []Part{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 3, End: 6},
		{Index: 2, Start: 6, End: 9},
		{Index: 3, Start: 9, End: 12},
	}
	for i, p := range parts {
		if p != want[i] {
			t.Fatalf("part %d: got %+v want %+v", i, p, want[i])
		}
	}
}

func TestRemainderAbsorbedIntoLastPart(t *testing.T) {
	parts, err := Partition(0, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []Part{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 3, End: 6},
		{Index: 2, Start: 6, End: 10},
	}
	for i, p := range parts {
		if p != want[i] {
			t.Fatalf("part %d: got %+v want %+v", i, p, want[i])
		}
	}
}

func TestConcurrencyClamp(t *testing.T) {
	clamped := ClampConcurrency(8, 2)
	if clamped != 2 {
		t.Fatalf("expected clamp to 2, got %d", clamped)
	}
	parts, err := Partition(0, 2, clamped)
	if err != nil {
		t.Fatal(err)
	}
	want := []Part{
		{Index: 0, Start: 0, End: 1},
		{Index: 1, Start: 1, End: 2},
	}
	for i, p := range parts {
		if p != want[i] {
			t.Fatalf("part %d: got %+v want %+v", i, p, want[i])
		}
	}
}

func TestPartitionStartsAtNonZeroFrame(t *testing.T) {
	parts, err := Partition(100, 6, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Part{
		{Index: 0, Start: 100, End: 103},
		{Index: 1, Start: 103, End: 106},
	}
	for i, p := range parts {
		if p != want[i] {
			t.Fatalf("part %d: got %+v want %+v", i, p, want[i])
		}
	}
}

func TestPartitionInvariants(t *testing.T) {
	cases := []struct{ start, duration, concurrency int }{
		{0, 1, 1}, {0, 100, 7}, {5, 37, 5}, {0, 1000, 16}, {3, 9, 9},
	}
	for _, c := range cases {
		parts, err := Partition(c.start, c.duration, c.concurrency)
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		if len(parts) != c.concurrency {
			t.Fatalf("%+v: expected %d parts, got %d", c, c.concurrency, len(parts))
		}
		cursor := c.start
		total := 0
		for i, p := range parts {
			if p.Index != i {
				t.Fatalf("%+v: part %d has index %d", c, i, p.Index)
			}
			if p.Start != cursor {
				t.Fatalf("%+v: part %d starts at %d, want %d (gap or overlap)", c, i, p.Start, cursor)
			}
			if p.Frames() <= 0 {
				t.Fatalf("%+v: part %d is empty", c, i)
			}
			cursor = p.End
			total += p.Frames()
		}
		if cursor != c.start+c.duration {
			t.Fatalf("%+v: parts don't cover the full range, ended at %d want %d", c, cursor, c.start+c.duration)
		}
		if total != c.duration {
			t.Fatalf("%+v: total frames %d != duration %d", c, total, c.duration)
		}
	}
}

func TestPartitionRejectsTooMuchConcurrency(t *testing.T) {
	if _, err := Partition(0, 2, 5); err == nil {
		t.Fatal("expected error when concurrency exceeds durationFrames")
	}
}
