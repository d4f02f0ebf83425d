package facematch

import "sort"

// RegionBucketPx is the grid cell size used to decide that two detections
// refer to the same physical face. Deduplication is deliberately
// position-based, not embedding-based: detections of one face from two
// passes may embed slightly differently after resampling, but their location
// is stable.
const RegionBucketPx = 50

// RegionKey is the coarse spatial bucket of a detection's top-left corner.
type RegionKey struct {
	Col int
	Row int
}

// Region returns the dedup bucket for a facial area.
func (a FacialArea) Region() RegionKey {
	return RegionKey{Col: a.X / RegionBucketPx, Row: a.Y / RegionBucketPx}
}

// Dedup collapses detections whose bounding boxes fall in the same grid
// bucket, keeping the first-seen detection per bucket. Running it on an
// already-deduplicated list returns the same list. The seen-set lives on the
// stack of this one call so concurrent matches stay independent.
func Dedup(detections []Detection) []Detection {
	seen := make(map[RegionKey]struct{}, len(detections))
	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		key := det.Area.Region()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, det)
	}
	return kept
}

// SortByPosition orders detections top-to-bottom, left-to-right. Output
// ordering is then reproducible no matter what order the detector reported
// the faces in.
func SortByPosition(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Area.Y != detections[j].Area.Y {
			return detections[i].Area.Y < detections[j].Area.Y
		}
		return detections[i].Area.X < detections[j].Area.X
	})
}
