package parser

type ResultKind int

const (
	NoMatch ResultKind = iota
	Completed
	Ambiguous
	Suggestion
)

func (k ResultKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Ambiguous:
		return "ambiguous"
	case Suggestion:
		return "suggestion"
	default:
		return "no match"
	}
}

// Result is the outcome of completing one input buffer. Value holds the
// completed token for Completed and the closest token for Suggestion.
// Candidates lists every token the caller may choose between.
type Result struct {
	Kind         ResultKind
	Input        string
	Value        string
	Candidates   []string
	NeedsConfirm bool
}

// Context is the closed set of tokens valid at one point in the UI flow.
// Numeric > 0 additionally accepts the choices "1" through Numeric.
type Context struct {
	Name    string
	Tokens  []string
	Numeric int
}
