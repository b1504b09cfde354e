package dialog

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/types"
)

// Sender identifies who produced an event.
type Sender struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

type actionFunc func(ctx context.Context, c *conversation, params map[string]string) []Reply

// Machine drives the multi-step dialogues over a SessionStore and the
// task repository. It is transport-agnostic: events in, replies out.
// Events for the same conversation are serialized on a per-chat lock,
// so duplicate webhook deliveries cannot interleave session writes.
type Machine struct {
	sessions SessionStore
	tasks    types.TaskStore
	users    types.UserStore

	actions map[string]actionFunc

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewMachine(sessions SessionStore, tasks types.TaskStore, users types.UserStore) *Machine {
	m := &Machine{
		sessions: sessions,
		tasks:    tasks,
		users:    users,
		locks:    make(map[int64]*sync.Mutex),
	}
	m.actions = map[string]actionFunc{
		"listTasks":              m.actionListTasks,
		"createTaskPrompt":       m.actionCreateTaskPrompt,
		"searchTaskPrompt":       m.actionSearchTaskPrompt,
		"help":                   m.actionHelp,
		"showTask":               m.actionShowTask,
		"editTaskMenu":           m.actionEditTaskMenu,
		"editTitle":              m.actionEditTitle,
		"editDescription":        m.actionEditDescription,
		"editDeadline":           m.actionEditDeadline,
		"changeStatus":           m.actionChangeStatus,
		"changePriority":         m.actionChangePriority,
		"updateTaskStatus":       m.actionUpdateTaskStatus,
		"updateTaskPriority":     m.actionUpdateTaskPriority,
		"deleteTaskConfirm":      m.actionDeleteTaskConfirm,
		"deleteTask":             m.actionDeleteTask,
		"skipDescription":        m.actionSkipDescription,
		"setTaskStatus":          m.actionSetTaskStatus,
		"setTaskPriority":        m.actionSetTaskPriority,
		"skipTaskDueDate":        m.actionSkipTaskDueDate,
		"filterMenu":             m.actionFilterMenu,
		"filterByStatusMenu":     m.actionFilterByStatusMenu,
		"filterByPriorityMenu":   m.actionFilterByPriorityMenu,
		"filterByDeadlinePrompt": m.actionFilterByDeadlinePrompt,
		"applyFilter":            m.actionApplyFilter,
	}
	return m
}

func (m *Machine) chatLock(chatID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[chatID] = l
	}
	return l
}

// Handle runs one event to completion and returns the replies to
// render. Safe for concurrent use across conversations; events within
// one conversation are processed one at a time.
func (m *Machine) Handle(ctx context.Context, chatID int64, from Sender, ev Event) []Reply {
	lock := m.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	c := &conversation{m: m, chatID: chatID, from: from}

	switch ev.Kind {
	case EventCommand:
		return m.handleCommand(ctx, c, ev.Name)
	case EventAction:
		handler, ok := m.actions[ev.Name]
		if !ok {
			log.Printf("dialog: unknown action %q in chat %d", ev.Name, chatID)
			return []Reply{{Text: messages.ErrorDefault()}}
		}
		return handler(ctx, c, ev.Params)
	case EventText:
		return m.handleText(ctx, c, ev.Text)
	}
	return nil
}

func (m *Machine) handleCommand(ctx context.Context, c *conversation, name string) []Reply {
	switch strings.TrimPrefix(name, "/") {
	case "start":
		return m.handleStart(ctx, c)
	case "help":
		return m.actionHelp(ctx, c, nil)
	case "tasks":
		return m.actionListTasks(ctx, c, nil)
	case "create":
		return m.actionCreateTaskPrompt(ctx, c, nil)
	case "search":
		return m.actionSearchTaskPrompt(ctx, c, nil)
	case "filter":
		return m.actionFilterMenu(ctx, c, nil)
	}
	return []Reply{{Text: messages.Help()}}
}

func (m *Machine) handleStart(ctx context.Context, c *conversation) []Reply {
	user, err := m.users.UpsertUser(ctx, types.User{
		TelegramID: c.from.TelegramID,
		Username:   c.from.Username,
		FirstName:  c.from.FirstName,
		LastName:   c.from.LastName,
	})
	if err != nil {
		log.Printf("dialog: upsert user %d: %v", c.from.TelegramID, err)
		return []Reply{{Text: messages.ErrorDefault()}}
	}
	c.set(ctx, keyTelegramUserID, strconv.FormatInt(user.TelegramID, 10))

	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	return []Reply{{
		Text:    messages.Welcome(name),
		Buttons: mainMenuButtons(),
	}}
}

// handleText dispatches free text on the single active prompt. With no
// prompt active the text belongs to no flow and falls back to help.
func (m *Machine) handleText(ctx context.Context, c *conversation, text string) []Reply {
	text = strings.TrimSpace(text)

	switch c.prompt(ctx) {
	case PromptTaskTitle:
		return m.textTaskTitle(ctx, c, text)
	case PromptTaskDescription:
		return m.textTaskDescription(ctx, c, text)
	case PromptTaskStatus:
		// Button-only step: repeat the keyboard.
		return []Reply{statusChoiceReply()}
	case PromptTaskPriority:
		return []Reply{priorityChoiceReply()}
	case PromptTaskDueDate:
		return m.textTaskDueDate(ctx, c, text)
	case PromptNewTitle:
		return m.textNewTitle(ctx, c, text)
	case PromptNewDescription:
		return m.textNewDescription(ctx, c, text)
	case PromptNewDeadline:
		return m.textNewDeadline(ctx, c, text)
	case PromptSearchQuery:
		return m.textSearchQuery(ctx, c, text)
	case PromptDeadlineFilter:
		return m.textDeadlineFilter(ctx, c, text)
	}
	return []Reply{{Text: messages.Help(), Buttons: mainMenuButtons()}}
}

// conversation carries per-event context: the chat, the sender and
// session access helpers.
type conversation struct {
	m      *Machine
	chatID int64
	from   Sender
}

func (c *conversation) get(ctx context.Context, key string) string {
	v, _, err := c.m.sessions.Get(ctx, c.chatID, key)
	if err != nil {
		log.Printf("dialog: session get %s in chat %d: %v", key, c.chatID, err)
		return ""
	}
	return v
}

func (c *conversation) set(ctx context.Context, key, value string) {
	if err := c.m.sessions.Set(ctx, c.chatID, key, value); err != nil {
		log.Printf("dialog: session set %s in chat %d: %v", key, c.chatID, err)
	}
}

func (c *conversation) forget(ctx context.Context, keys ...string) {
	if err := c.m.sessions.Forget(ctx, c.chatID, keys...); err != nil {
		log.Printf("dialog: session forget in chat %d: %v", c.chatID, err)
	}
}

func (c *conversation) prompt(ctx context.Context) Prompt {
	p := Prompt(c.get(ctx, keyPrompt))
	if !p.known() {
		return PromptNone
	}
	return p
}

func (c *conversation) setPrompt(ctx context.Context, p Prompt) {
	c.set(ctx, keyPrompt, string(p))
}

func (c *conversation) clearPrompt(ctx context.Context) {
	c.forget(ctx, keyPrompt)
}

// telegramID falls back to the session copy for events where the
// transport could not attach a sender.
func (c *conversation) telegramID(ctx context.Context) int64 {
	if c.from.TelegramID != 0 {
		return c.from.TelegramID
	}
	id, _ := strconv.ParseInt(c.get(ctx, keyTelegramUserID), 10, 64)
	return id
}

// user resolves the registered user for this conversation, or nil when
// the sender never ran /start.
func (c *conversation) user(ctx context.Context) *types.User {
	telegramID := c.telegramID(ctx)
	if telegramID == 0 {
		return nil
	}
	user, err := c.m.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			log.Printf("dialog: get user %d: %v", telegramID, err)
		}
		return nil
	}
	return user
}
