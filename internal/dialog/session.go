package dialog

import "context"

// SessionStore keeps per-conversation dialogue state. Implementations
// must isolate conversations from each other; see store.RedisSessionStore
// and store.MemorySessionStore.
type SessionStore interface {
	Get(ctx context.Context, chatID int64, key string) (string, bool, error)
	Set(ctx context.Context, chatID int64, key, value string) error
	Forget(ctx context.Context, chatID int64, keys ...string) error
}

// Session keys. keyPrompt holds the single active prompt; the rest are
// scratch values filled step by step during a flow.
const (
	keyPrompt = "prompt"

	keyTaskTitle       = "task_title"
	keyTaskDescription = "task_description"
	keyTaskStatus      = "task_status"
	keyTaskPriority    = "task_priority"
	keyTaskDueDate     = "task_due_date"
	keyEditTaskID      = "edit_task_id"
	keyTelegramUserID  = "telegram_user_id"
)

var scratchKeys = []string{
	keyTaskTitle,
	keyTaskDescription,
	keyTaskStatus,
	keyTaskPriority,
	keyTaskDueDate,
}
