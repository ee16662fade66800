package models

// Focus describes which track an onboarding candidate is interested in
type Focus string

const (
	FocusActing Focus = "acting"
	FocusTech   Focus = "tech"
	FocusBoth   Focus = "both"
)

// Valid reports whether the focus is one of the known values
func (f Focus) Valid() bool {
	return f == FocusActing || f == FocusTech || f == FocusBoth
}

// Matches reports whether a candidate with this focus satisfies a
// requested focus. A candidate with FocusBoth matches any request.
func (f Focus) Matches(requested Focus) bool {
	return f == requested || f == FocusBoth || requested == FocusBoth
}

// DocumentStatus tracks the state of a candidate's onboarding paperwork
type DocumentStatus string

const (
	DocumentsPending  DocumentStatus = "pending"
	DocumentsComplete DocumentStatus = "complete"
	DocumentsMissing  DocumentStatus = "missing"
)

// Experience classifies a candidate's prior production experience
type Experience string

const (
	Experienced Experience = "experienced"
	Newcomer    Experience = "newcomer"
)

// Candidate is an onboarding participant eligible for group assignment.
// Candidates are immutable for the duration of one solve; the solver
// operates on a copy of the pool taken at request time.
type Candidate struct {
	ID             string         `json:"id"`
	Name           string         `json:"name,omitempty"`
	Focus          Focus          `json:"focus"`
	AgeBucket      string         `json:"age_bucket"`
	Background     string         `json:"background"`
	DocumentStatus DocumentStatus `json:"document_status"`
	Gender         string         `json:"gender"`
	Experience     Experience     `json:"experience"`
}

// Group is a capacity-bounded destination (department or role) that
// candidates are assigned into.
type Group struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Capacity    int    `json:"capacity" yaml:"capacity"`
}
