package pid

// accumulator folds one tick's integral contribution into the running
// integral. The strategy is picked at construction and never changes.
type accumulator interface {
	add(integral, contribution float64) float64
	reset()
	size() int
}

// runningSum is the unbounded default.
type runningSum struct{}

func (runningSum) add(integral, contribution float64) float64 { return integral + contribution }
func (runningSum) reset()                                     {}
func (runningSum) size() int                                  { return 0 }

// window keeps the last len(slots) contributions so the integral is a moving
// sum: each new value evicts the one written len(slots) ticks earlier.
type window struct {
	slots  []float64
	cursor int
}

func newWindow(n int) *window {
	return &window{slots: make([]float64, n)}
}

func (w *window) add(integral, contribution float64) float64 {
	w.cursor++
	if w.cursor >= len(w.slots) {
		w.cursor = 0
	}
	integral -= w.slots[w.cursor]
	w.slots[w.cursor] = contribution
	return integral + contribution
}

func (w *window) reset() {
	for i := range w.slots {
		w.slots[i] = 0
	}
	w.cursor = 0
}

func (w *window) size() int { return len(w.slots) }

// sum is the exact total of the buffered contributions.
func (w *window) sum() float64 {
	s := 0.0
	for _, v := range w.slots {
		s += v
	}
	return s
}
