package preview

import "sync"

// Viewport is the resize event source of one builder page. Listeners run in
// registration order on the goroutine that reports the resize.
type Viewport struct {
	mu        sync.Mutex
	width     float64
	nextID    int
	listeners map[int]func(float64)
	order     []int
}

func NewViewport() *Viewport {
	return &Viewport{listeners: make(map[int]func(float64))}
}

// Width returns the last reported container width, 0 if none was reported
func (v *Viewport) Width() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// OnResize registers fn and returns its deregistration
func (v *Viewport) OnResize(fn func(width float64)) (remove func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.order = append(v.order, id)
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.listeners, id)
			for i, other := range v.order {
				if other == id {
					v.order = append(v.order[:i], v.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Listeners returns the number of registered listeners
func (v *Viewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}

// Resize records the new width and notifies every listener. No debouncing:
// each call is delivered.
func (v *Viewport) Resize(width float64) {
	v.mu.Lock()
	v.width = width
	fns := make([]func(float64), 0, len(v.order))
	for _, id := range v.order {
		fns = append(fns, v.listeners[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}
