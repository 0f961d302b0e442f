package state

// SessionState is the full shared state of a live session. The owner's copy
// is authoritative; spectators converge on it by applying snapshots.
type SessionState struct {
	Pseudocode       string
	CppCode          string
	HasErrors        bool
	Errors           []string
	Explanation      string
	ExecutionSteps   []ExecutionStep
	CurrentStepIndex int
	IsSwapped        bool
}

// ExecutionStep is one record of a step-by-step execution trace. The relay
// never looks inside these; only the clients type them.
type ExecutionStep struct {
	Step        int               `json:"step"`
	Line        int               `json:"line"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Value       string            `json:"value,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
	Output      string            `json:"output,omitempty"`
}

// Snapshot is a sparse overlay of SessionState. A nil field means "no
// change"; a non-nil field (including pointers to zero values and empty
// slices) is an authoritative replacement. Slices use pointer-to-slice so
// that an explicit empty list survives the omitempty round trip.
type Snapshot struct {
	Pseudocode       *string          `json:"pseudocode,omitempty"`
	CppCode          *string          `json:"cppCode,omitempty"`
	HasErrors        *bool            `json:"hasErrors,omitempty"`
	Errors           *[]string        `json:"errors,omitempty"`
	Explanation      *string          `json:"explanation,omitempty"`
	ExecutionSteps   *[]ExecutionStep `json:"executionSteps,omitempty"`
	CurrentStepIndex *int             `json:"currentStepIndex,omitempty"`
	IsSwapped        *bool            `json:"isSwapped,omitempty"`
}

// Apply merges the snapshot into s: present fields replace, absent fields
// are left untouched. Applying the same snapshot twice is a no-op.
func (s *SessionState) Apply(m Snapshot) {
	if m.Pseudocode != nil {
		s.Pseudocode = *m.Pseudocode
	}
	if m.CppCode != nil {
		s.CppCode = *m.CppCode
	}
	if m.HasErrors != nil {
		s.HasErrors = *m.HasErrors
	}
	if m.Errors != nil {
		s.Errors = append([]string(nil), (*m.Errors)...)
	}
	if m.Explanation != nil {
		s.Explanation = *m.Explanation
	}
	if m.ExecutionSteps != nil {
		s.ExecutionSteps = append([]ExecutionStep(nil), (*m.ExecutionSteps)...)
	}
	if m.CurrentStepIndex != nil {
		s.CurrentStepIndex = *m.CurrentStepIndex
	}
	if m.IsSwapped != nil {
		s.IsSwapped = *m.IsSwapped
	}
}

// Clone returns a deep copy, so callers can hand state to readers without
// sharing the backing slices.
func (s SessionState) Clone() SessionState {
	c := s
	c.Errors = append([]string(nil), s.Errors...)
	c.ExecutionSteps = append([]ExecutionStep(nil), s.ExecutionSteps...)
	return c
}

// SnapshotOf builds a full overlay carrying every field of st. The producer
// sends this broad snapshot on each mutation rather than a true diff.
func SnapshotOf(st SessionState) Snapshot {
	errs := append([]string(nil), st.Errors...)
	if errs == nil {
		errs = []string{}
	}
	steps := append([]ExecutionStep(nil), st.ExecutionSteps...)
	if steps == nil {
		steps = []ExecutionStep{}
	}
	return Snapshot{
		Pseudocode:       &st.Pseudocode,
		CppCode:          &st.CppCode,
		HasErrors:        &st.HasErrors,
		Errors:           &errs,
		Explanation:      &st.Explanation,
		ExecutionSteps:   &steps,
		CurrentStepIndex: &st.CurrentStepIndex,
		IsSwapped:        &st.IsSwapped,
	}
}
