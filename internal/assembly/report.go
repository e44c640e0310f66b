package assembly

import (
	"maps"
	"slices"
)

// State is the outcome of one token after assembly.
type State string

const (
	// StateUntouched means the template has no paragraph carrying the token.
	StateUntouched State = "untouched"
	// StateResolved means the value was written in place.
	StateResolved State = "resolved"
	// StateDeleted means the paragraph was removed because the value was empty.
	StateDeleted State = "deleted"
	// StateExpanded means the placeholder grew into generated paragraphs.
	StateExpanded State = "expanded"
)

// Report records what assembly did with each token.
type Report struct {
	Fields map[string]State `json:"fields"`
	// Unresolved lists {Name} tokens still present in the output.
	Unresolved []string `json:"unresolved,omitempty"`
}

func newReport() Report {
	r := Report{Fields: make(map[string]State, len(vocabulary))}
	for _, f := range vocabulary {
		r.Fields[f.Token] = StateUntouched
	}
	return r
}

func (r *Report) mark(token string, s State) {
	// A resolved occurrence outranks a later deleted duplicate.
	if r.Fields[token] == StateResolved && s == StateDeleted {
		return
	}
	r.Fields[token] = s
}

// State returns the recorded state of a token.
func (r Report) State(token string) State {
	if s, ok := r.Fields[token]; ok {
		return s
	}
	return StateUntouched
}

// Count returns how many tokens ended in state s.
func (r Report) Count(s State) int {
	n := 0
	for _, v := range r.Fields {
		if v == s {
			n++
		}
	}
	return n
}

// Tokens returns the reported tokens in sorted order.
func (r Report) Tokens() []string {
	return slices.Sorted(maps.Keys(r.Fields))
}
