package core

// Report aggregates validation messages of a whole-model pass or of a
// deserialization. Messages are deduplicated by text, first occurrence wins.
type Report struct {
	Errors   []string
	Rejected []string

	seen map[string]bool
}

func NewReport() *Report {
	return &Report{seen: make(map[string]bool)}
}

// Add records messages that are not already present.
func (r *Report) Add(messages ...string) {
	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	for _, msg := range messages {
		if r.seen[msg] {
			continue
		}
		r.seen[msg] = true
		r.Errors = append(r.Errors, msg)
	}
}

// Reject records a component that failed validation together with its messages.
func (r *Report) Reject(name string, messages ...string) {
	r.Rejected = append(r.Rejected, name)
	r.Add(messages...)
}

// OK reports whether nothing was recorded.
func (r *Report) OK() bool {
	return r == nil || (len(r.Errors) == 0 && len(r.Rejected) == 0)
}
