// internal/models/conversation.go
package models

// Step is the position of a conversation in the intake dialogue.
// The set is closed; every step has exactly one handler in the flow engine.
type Step string

const (
	StepWelcome         Step = "welcome"
	StepSurname         Step = "surname"
	StepEmail           Step = "email"
	StepPhone           Step = "phone"
	StepDepartment      Step = "department"
	StepInterest        Step = "interest"
	StepLevel           Step = "level"
	StepTime            Step = "time"
	StepRecommendations Step = "recommendations"
	StepNoResults       Step = "no_results"
	StepEnd             Step = "end"
)

// AllSteps lists every step in flow order. The linear stretch runs
// welcome through recommendations; no_results and end are the branch targets.
var AllSteps = []Step{
	StepWelcome, StepSurname, StepEmail, StepPhone, StepDepartment,
	StepInterest, StepLevel, StepTime, StepRecommendations,
	StepNoResults, StepEnd,
}

// Valid reports whether s is a member of the closed step set.
func (s Step) Valid() bool {
	for _, step := range AllSteps {
		if s == step {
			return true
		}
	}
	return false
}

// Qualification answer keys collected after department selection.
const (
	AnswerInterest = "interest"
	AnswerLevel    = "level"
	AnswerTime     = "time"
)

// Identity holds the visitor contact fields collected step by step.
// Each field is write-once per session: the owning step sets it and no
// later step overwrites it.
type Identity struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Conversation is the per-session state mutated exclusively by the flow engine.
type Conversation struct {
	SessionID     string            `json:"sessionId"`
	Step          Step              `json:"step"`
	Identity      Identity          `json:"identity"`
	Department    string            `json:"department,omitempty"`
	Answers       map[string]string `json:"answers"`
	UserID        string            `json:"userId,omitempty"`
	MessageCount  int               `json:"messageCount"`
	LastResultSet *MatchResult      `json:"lastResultSet,omitempty"`
}

// NewConversation creates a fresh conversation positioned at the welcome step.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Step:      StepWelcome,
		Answers:   make(map[string]string),
	}
}

// ClearAnswers resets the qualification answers for the no-results retry sub-flow.
func (c *Conversation) ClearAnswers() {
	c.Answers = make(map[string]string)
}
