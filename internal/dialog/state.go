package dialog

// Prompt names the step a conversation is waiting on. Exactly one
// prompt is active per conversation at any time (stored under a single
// session key), so free text is dispatched by one switch instead of
// probing a bag of boolean flags.
type Prompt string

const (
	PromptNone Prompt = ""

	// Creation flow, in order.
	PromptTaskTitle       Prompt = "awaiting_task_title"
	PromptTaskDescription Prompt = "awaiting_task_description"
	PromptTaskStatus      Prompt = "awaiting_task_status"
	PromptTaskPriority    Prompt = "awaiting_task_priority"
	PromptTaskDueDate     Prompt = "awaiting_task_due_date"

	// Single-field edit flow.
	PromptNewTitle       Prompt = "awaiting_new_title"
	PromptNewDescription Prompt = "awaiting_new_description"
	PromptNewDeadline    Prompt = "awaiting_new_deadline"

	// Search and filter flows.
	PromptSearchQuery    Prompt = "awaiting_search_query"
	PromptDeadlineFilter Prompt = "awaiting_deadline_filter"
)

func (p Prompt) known() bool {
	switch p {
	case PromptTaskTitle, PromptTaskDescription, PromptTaskStatus,
		PromptTaskPriority, PromptTaskDueDate,
		PromptNewTitle, PromptNewDescription, PromptNewDeadline,
		PromptSearchQuery, PromptDeadlineFilter:
		return true
	}
	return false
}
