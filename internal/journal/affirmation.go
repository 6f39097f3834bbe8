package journal

// AffirmationRotator cycles through a list of affirmations in strict
// round-robin order.
type AffirmationRotator struct {
	items []string
	head  int // index of the next affirmation
}

// NewAffirmationRotator returns a rotator over a copy of items.
func NewAffirmationRotator(items []string) *AffirmationRotator {
	return &AffirmationRotator{items: append([]string(nil), items...)}
}

// Next returns the front affirmation and moves it to the back.
// It returns "" when there are no affirmations.
func (r *AffirmationRotator) Next() string {
	if len(r.items) == 0 {
		return ""
	}
	text := r.items[r.head]
	r.head = (r.head + 1) % len(r.items)
	return text
}

// Add appends an affirmation to the back of the rotation.
func (r *AffirmationRotator) Add(text string) {
	r.items = append(r.Order(), text)
	r.head = 0
}

// Order returns the affirmations in the order Next will yield them.
func (r *AffirmationRotator) Order() []string {
	out := make([]string, 0, len(r.items))
	out = append(out, r.items[r.head:]...)
	return append(out, r.items[:r.head]...)
}

// Len returns the number of affirmations in rotation.
func (r *AffirmationRotator) Len() int {
	return len(r.items)
}
