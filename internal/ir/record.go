package ir

// ActionRecord is one entry in the action ledger: a single invocation of a
// concept action, from the moment it is registered (pending, Output nil)
// until its output is attached (completed).
//
// A nil Output means the action has not completed; a non-nil empty IRObject
// means it completed with no output fields. Dependent rules rely on this
// distinction, so Output must never be set to a non-nil value before
// completion.
type ActionRecord struct {
	ID           string    `json:"id"`            // Content-addressed hash (or caller-supplied)
	Action       ActionRef `json:"action"`        // "Concept.action"
	Input        IRObject  `json:"input"`         // Constrained to IRValue types
	Output       IRObject  `json:"output"`        // nil until completed
	Flow         string    `json:"flow"`          // Causal flow token
	Seq          int64     `json:"seq"`           // Logical clock at invocation
	CompletedSeq int64     `json:"completed_seq"` // Logical clock at completion; 0 while pending
}

// Completed reports whether the record has an attached output.
func (r *ActionRecord) Completed() bool {
	return r.Output != nil
}
