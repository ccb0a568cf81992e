package domain

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Turn is one entry in a user's session history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
