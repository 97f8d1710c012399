package export

// Placement is where a content rectangle lands inside a container
type Placement struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Fit scales content to fit the container while keeping its aspect ratio, then
// centers it. Content relatively wider than the container fills the width;
// otherwise it fills the height. Non-positive sizes give a zero placement.
func Fit(containerWidth, containerHeight, contentWidth, contentHeight float64) Placement {
	if containerWidth <= 0 || containerHeight <= 0 || contentWidth <= 0 || contentHeight <= 0 {
		return Placement{}
	}

	containerAR := containerWidth / containerHeight
	contentAR := contentWidth / contentHeight

	var w, h float64
	if contentAR > containerAR {
		w = containerWidth
		h = containerWidth / contentAR
	} else {
		h = containerHeight
		w = containerHeight * contentAR
	}

	return Placement{
		Width:  w,
		Height: h,
		X:      (containerWidth - w) / 2,
		Y:      (containerHeight - h) / 2,
	}
}
