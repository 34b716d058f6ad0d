package hw

// ErrorRing is a bounded error history owned by a device instance. When full
// it overwrites the oldest entry, so the most recent faults are always
// retained.
type ErrorRing struct {
	buf   []error
	next  int
	count int
}

// DefaultErrorCapacity matches the per-device error history the platform
// keeps.
const DefaultErrorCapacity = 10

func NewErrorRing(capacity int) *ErrorRing {
	if capacity <= 0 {
		capacity = DefaultErrorCapacity
	}
	return &ErrorRing{buf: make([]error, capacity)}
}

func (r *ErrorRing) Push(err error) {
	if r == nil || err == nil {
		return
	}
	r.buf[r.next] = err
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Errors returns the recorded errors, oldest first.
func (r *ErrorRing) Errors() []error {
	if r == nil || r.count == 0 {
		return nil
	}
	out := make([]error, 0, r.count)
	start := r.next - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

func (r *ErrorRing) Len() int {
	if r == nil {
		return 0
	}
	return r.count
}

func (r *ErrorRing) Capacity() int {
	if r == nil {
		return 0
	}
	return len(r.buf)
}
