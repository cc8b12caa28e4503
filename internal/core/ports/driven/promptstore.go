package driven

// Well-known prompt names. Each maps to a user-editable file in the
// prompts directory.
const (
	// PromptChatSystem is the system prompt framing document conversations.
	PromptChatSystem = "chat_system"

	// PromptSummary produces a structured summary of a document.
	PromptSummary = "summary"

	// PromptKeyPoints extracts the key points of a document.
	PromptKeyPoints = "key_points"

	// PromptQuestions generates study questions about a document.
	PromptQuestions = "questions"
)

// PromptStore loads prompt templates by name.
// Implementations may read user-editable files with embedded fallbacks.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Names returns the well-known prompt names the store ships defaults for.
	Names() []string

	// Reload clears any cached templates, forcing fresh loads.
	Reload()

	// Dir returns the prompt directory path.
	Dir() string
}
