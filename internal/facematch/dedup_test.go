package facematch

import (
	"reflect"
	"testing"
)

func TestDedupCollapsesSameBucket(t *testing.T) {
	detections := []Detection{
		{Area: FacialArea{X: 100, Y: 100}, Source: SourcePrimary},
		{Area: FacialArea{X: 110, Y: 120}, Source: SourceUpscaled}, // same 50px bucket
		{Area: FacialArea{X: 300, Y: 100}, Source: SourcePrimary},
	}

	kept := Dedup(detections)
	if len(kept) != 2 {
		t.Fatalf("got %d detections, want 2", len(kept))
	}
	// First-seen wins: the primary-pass detection survives.
	if kept[0].Source != SourcePrimary || kept[0].Area.X != 100 {
		t.Errorf("kept[0] = %+v, want first-seen primary detection", kept[0])
	}
}

func TestDedupBucketBoundary(t *testing.T) {
	// 149 and 150 fall in adjacent buckets; both detections survive.
	detections := []Detection{
		{Area: FacialArea{X: 149, Y: 0}},
		{Area: FacialArea{X: 150, Y: 0}},
	}
	if kept := Dedup(detections); len(kept) != 2 {
		t.Errorf("got %d detections, want 2 across bucket boundary", len(kept))
	}
}

func TestDedupIdempotent(t *testing.T) {
	detections := []Detection{
		{Area: FacialArea{X: 10, Y: 10}},
		{Area: FacialArea{X: 15, Y: 12}},
		{Area: FacialArea{X: 400, Y: 200}},
		{Area: FacialArea{X: 90, Y: 600}},
	}

	once := Dedup(detections)
	twice := Dedup(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup not idempotent: %+v vs %+v", once, twice)
	}
}

func TestDedupEmpty(t *testing.T) {
	if kept := Dedup(nil); len(kept) != 0 {
		t.Errorf("got %d detections, want 0", len(kept))
	}
}

func TestSortByPosition(t *testing.T) {
	detections := []Detection{
		{Area: FacialArea{X: 300, Y: 200}},
		{Area: FacialArea{X: 50, Y: 10}},
		{Area: FacialArea{X: 10, Y: 200}},
		{Area: FacialArea{X: 500, Y: 10}},
	}

	SortByPosition(detections)

	want := []FacialArea{
		{X: 50, Y: 10},
		{X: 500, Y: 10},
		{X: 10, Y: 200},
		{X: 300, Y: 200},
	}
	for i, w := range want {
		if detections[i].Area != w {
			t.Errorf("position %d = %+v, want %+v", i, detections[i].Area, w)
		}
	}
}

func TestRegionKey(t *testing.T) {
	tests := []struct {
		area FacialArea
		want RegionKey
	}{
		{FacialArea{X: 0, Y: 0}, RegionKey{0, 0}},
		{FacialArea{X: 49, Y: 49}, RegionKey{0, 0}},
		{FacialArea{X: 50, Y: 0}, RegionKey{1, 0}},
		{FacialArea{X: 120, Y: 260}, RegionKey{2, 5}},
	}
	for _, tt := range tests {
		if got := tt.area.Region(); got != tt.want {
			t.Errorf("Region(%+v) = %+v, want %+v", tt.area, got, tt.want)
		}
	}
}
