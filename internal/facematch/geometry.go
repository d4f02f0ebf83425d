package facematch

// Scale maps a facial area detected on a resized image back to the
// coordinate space of the unscaled image by dividing every component by the
// scale factor that was applied. A scale of 1 returns the area unchanged;
// components are truncated to whole pixels.
func (a FacialArea) Scale(scale float64) FacialArea {
	if scale == 1.0 || scale == 0 {
		return a
	}
	return FacialArea{
		X: int(float64(a.X) / scale),
		Y: int(float64(a.Y) / scale),
		W: int(float64(a.W) / scale),
		H: int(float64(a.H) / scale),
	}
}

// ScaleAreas rescales the facial areas of all detections in place.
func ScaleAreas(detections []Detection, scale float64) {
	if scale == 1.0 {
		return
	}
	for i := range detections {
		detections[i].Area = detections[i].Area.Scale(scale)
	}
}
