package preview

import (
	"strconv"
	"sync"
)

const (
	// NominalWidth is 210mm at 96 px/in, the on-screen width of the page at 1:1
	NominalWidth = 793.7
	// DefaultPadding is subtracted from each side of the container
	DefaultPadding = 32.0

	TransformOrigin = "top center"
)

// FitScale returns the uniform scale that keeps a nominalWidth document inside
// the container without horizontal overflow. It never scales up. ok is false
// when the container cannot be measured yet; the caller keeps its old scale.
func FitScale(containerWidth, padding, nominalWidth float64) (scale float64, ok bool) {
	if containerWidth <= 0 || nominalWidth <= 0 {
		return 0, false
	}
	available := containerWidth - 2*padding
	if available <= 0 {
		return 0, false
	}
	if available < nominalWidth {
		return available / nominalWidth, true
	}
	return 1, true
}

// Transform is a uniform 2D scale anchored at the top center of the document
type Transform struct {
	Scale  float64 `json:"scale"`
	Origin string  `json:"origin"`
}

// CSS renders the transform as a CSS transform value
func (t Transform) CSS() string {
	return "scale(" + strconv.FormatFloat(t.Scale, 'f', -1, 64) + ")"
}

// Scaler tracks the preview scale of one mounted document
type Scaler struct {
	nominalWidth float64
	padding      float64

	mu    sync.Mutex
	scale float64
}

// NewScaler creates a scaler starting at 1:1
func NewScaler(nominalWidth, padding float64) *Scaler {
	if nominalWidth <= 0 {
		nominalWidth = NominalWidth
	}
	if padding < 0 {
		padding = DefaultPadding
	}
	return &Scaler{nominalWidth: nominalWidth, padding: padding, scale: 1}
}

// Update recomputes the scale for a container width. When the width cannot be
// measured the previous scale is kept and ok is false.
func (s *Scaler) Update(containerWidth float64) (Transform, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scale, ok := FitScale(containerWidth, s.padding, s.nominalWidth); ok {
		s.scale = scale
		return Transform{Scale: scale, Origin: TransformOrigin}, true
	}
	return Transform{Scale: s.scale, Origin: TransformOrigin}, false
}

// Transform returns the current transform
func (s *Scaler) Transform() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Transform{Scale: s.scale, Origin: TransformOrigin}
}

// Mount computes the scale for the viewport's current width and then on every
// resize. The returned function removes the resize listener and is safe to call
// more than once.
func (s *Scaler) Mount(v *Viewport, onChange func(Transform)) (unmount func()) {
	apply := func(width float64) {
		if t, ok := s.Update(width); ok && onChange != nil {
			onChange(t)
		}
	}

	remove := v.OnResize(apply)
	apply(v.Width())
	return remove
}
