package worker

import "testing"

func TestProgressPercent(t *testing.T) {
	p := Progress{FramesTotal: 4, FramesComplete: 1}
	if p.Percent() != 25 {
		t.Fatalf("expected 25%%, got %v", p.Percent())
	}
	if (Progress{}).Percent() != 0 {
		t.Fatal("expected 0%% for empty progress")
	}
}

func TestAggregate(t *testing.T) {
	agg := Aggregate([]Progress{
		{PartIndex: 0, FramesTotal: 10, FramesComplete: 5},
		{PartIndex: 1, FramesTotal: 10, FramesComplete: 10},
	})
	if agg.FramesTotal != 20 || agg.FramesComplete != 15 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if agg.Percent() != 75 {
		t.Fatalf("expected 75%%, got %v", agg.Percent())
	}
}
