package interview

// Role identifies which side of the dialogue produced a turn.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
)

// Turn is one utterance in the interview dialogue. Seq is 1-based and
// strictly increasing within a session, never reused.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Seq  int    `json:"sequence_number"`
}

// Candidate is the metadata the server exposes for a session token.
type Candidate struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}
