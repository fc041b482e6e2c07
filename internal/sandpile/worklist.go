package sandpile

// worklist is a FIFO of cell indices awaiting a topple. Each cell is queued
// at most once, so the ring never holds more than W*H entries and never grows.
type worklist struct {
	buf    []int32
	queued []bool
	head   int
	n      int
}

func newWorklist(cells int) worklist {
	return worklist{buf: make([]int32, cells), queued: make([]bool, cells)}
}

func (w *worklist) push(i int) {
	if w.queued[i] {
		return
	}
	w.queued[i] = true
	tail := w.head + w.n
	if tail >= len(w.buf) {
		tail -= len(w.buf)
	}
	w.buf[tail] = int32(i)
	w.n++
}

func (w *worklist) pop() int {
	i := int(w.buf[w.head])
	w.head++
	if w.head == len(w.buf) {
		w.head = 0
	}
	w.n--
	w.queued[i] = false
	return i
}

func (w *worklist) empty() bool { return w.n == 0 }

func (w *worklist) reset() {
	for w.n > 0 {
		w.pop()
	}
	w.head = 0
}
