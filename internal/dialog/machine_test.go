package dialog_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/AndriyMV/task-manager-bot/internal/dialog"
	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/store"
	"github.com/AndriyMV/task-manager-bot/types"
)

func newTestMachine() (*dialog.Machine, *store.MemoryStore) {
	st := store.NewMemoryStore()
	sessions := store.NewMemorySessionStore(0)
	return dialog.NewMachine(sessions, st, st), st
}

func sender(id int64, name string) dialog.Sender {
	return dialog.Sender{TelegramID: id, FirstName: name}
}

// start registers the sender so later events resolve to a user.
func start(t *testing.T, m *dialog.Machine, chatID int64, from dialog.Sender) {
	t.Helper()
	replies := m.Handle(context.Background(), chatID, from, dialog.CommandEvent("/start"))
	if len(replies) == 0 || !strings.Contains(replies[0].Text, "Вітаю") {
		t.Fatalf("start: unexpected replies %+v", replies)
	}
}

func allText(replies []dialog.Reply) string {
	var parts []string
	for _, r := range replies {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

// findButton returns the first button whose callback data starts with
// the given action name.
func findButton(t *testing.T, replies []dialog.Reply, action string) dialog.Button {
	t.Helper()
	for _, r := range replies {
		for _, b := range r.Buttons {
			name, _, err := dialog.DecodeAction(b.Data)
			if err == nil && name == action {
				return b
			}
		}
	}
	t.Fatalf("no %q button in replies %+v", action, replies)
	return dialog.Button{}
}

func press(t *testing.T, m *dialog.Machine, chatID int64, from dialog.Sender, b dialog.Button) []dialog.Reply {
	t.Helper()
	name, params, err := dialog.DecodeAction(b.Data)
	if err != nil {
		t.Fatalf("decode %q: %v", b.Data, err)
	}
	return m.Handle(context.Background(), chatID, from, dialog.ActionEvent(name, params))
}

func TestCreateTaskFlow(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(100, "Олена")
	start(t, m, 1, from)

	m.Handle(ctx, 1, from, dialog.CommandEvent("/create"))
	m.Handle(ctx, 1, from, dialog.TextEvent("Купити молоко"))
	m.Handle(ctx, 1, from, dialog.TextEvent("По дорозі додому"))
	// The picked status must not survive the commit.
	m.Handle(ctx, 1, from, dialog.ActionEvent("setTaskStatus", map[string]string{"status": "completed"}))
	m.Handle(ctx, 1, from, dialog.ActionEvent("setTaskPriority", map[string]string{"priority": "high"}))
	replies := m.Handle(ctx, 1, from, dialog.TextEvent("15.03.2025 14:30"))

	if !strings.Contains(allText(replies), "створено успішно") {
		t.Fatalf("expected creation confirmation, got %+v", replies)
	}

	user, err := st.GetUserByTelegramID(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := st.ListTasks(ctx, types.TaskFilter{UserID: user.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Title != "Купити молоко" || task.Description != "По дорозі додому" {
		t.Errorf("task fields = %q / %q", task.Title, task.Description)
	}
	if task.Status != types.StatusPending {
		t.Errorf("status = %s, want pending regardless of choice", task.Status)
	}
	if task.Priority != types.PriorityHigh {
		t.Errorf("priority = %s, want high", task.Priority)
	}
	if task.DueDate == nil || task.DueDate.Format("02.01.2006 15:04") != "15.03.2025 14:30" {
		t.Errorf("due date = %v", task.DueDate)
	}
}

func TestCreateTaskSkips(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(101, "Тарас")
	start(t, m, 2, from)

	m.Handle(ctx, 2, from, dialog.CommandEvent("/create"))
	replies := m.Handle(ctx, 2, from, dialog.TextEvent("Задача без деталей"))
	replies = press(t, m, 2, from, findButton(t, replies, "skipDescription"))
	if !strings.Contains(allText(replies), messages.ChooseStatus()) {
		t.Fatalf("expected status keyboard after skipping description, got %+v", replies)
	}
	m.Handle(ctx, 2, from, dialog.ActionEvent("setTaskStatus", map[string]string{"status": "pending"}))
	replies = m.Handle(ctx, 2, from, dialog.ActionEvent("setTaskPriority", map[string]string{"priority": "low"}))
	replies = press(t, m, 2, from, findButton(t, replies, "skipTaskDueDate"))

	if !strings.Contains(allText(replies), "створено успішно") {
		t.Fatalf("expected creation confirmation, got %+v", replies)
	}
	user, _ := st.GetUserByTelegramID(ctx, 101)
	tasks, _ := st.ListTasks(ctx, types.TaskFilter{UserID: user.ID})
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Description != "" || tasks[0].DueDate != nil {
		t.Errorf("skipped fields not empty: %q %v", tasks[0].Description, tasks[0].DueDate)
	}
}

func TestTitleValidationKeepsPrompt(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine()
	from := sender(102, "Ірина")
	start(t, m, 3, from)

	m.Handle(ctx, 3, from, dialog.CommandEvent("/create"))
	replies := m.Handle(ctx, 3, from, dialog.TextEvent(strings.Repeat("x", 300)))
	if !strings.Contains(allText(replies), "Назва не може") {
		t.Fatalf("expected title validation message, got %+v", replies)
	}
	// Prompt stays armed, a valid title still lands.
	replies = m.Handle(ctx, 3, from, dialog.TextEvent("Коротка назва"))
	if !strings.Contains(allText(replies), "Назва збережена") {
		t.Fatalf("expected title accepted after retry, got %+v", replies)
	}
}

func TestBadDateKeepsPrompt(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(103, "Петро")
	start(t, m, 4, from)

	m.Handle(ctx, 4, from, dialog.CommandEvent("/create"))
	m.Handle(ctx, 4, from, dialog.TextEvent("Дедлайн тест"))
	m.Handle(ctx, 4, from, dialog.ActionEvent("skipDescription", nil))
	m.Handle(ctx, 4, from, dialog.ActionEvent("setTaskStatus", map[string]string{"status": "pending"}))
	m.Handle(ctx, 4, from, dialog.ActionEvent("setTaskPriority", map[string]string{"priority": "medium"}))

	replies := m.Handle(ctx, 4, from, dialog.TextEvent("not-a-date"))
	if !strings.Contains(allText(replies), "Неправильний формат") {
		t.Fatalf("expected date validation message, got %+v", replies)
	}
	replies = m.Handle(ctx, 4, from, dialog.TextEvent("20.12.2025"))
	if !strings.Contains(allText(replies), "створено успішно") {
		t.Fatalf("expected creation after retry, got %+v", replies)
	}
	user, _ := st.GetUserByTelegramID(ctx, 103)
	tasks, _ := st.ListTasks(ctx, types.TaskFilter{UserID: user.ID})
	if tasks[0].DueDate == nil || tasks[0].DueDate.Hour() != 23 {
		t.Errorf("bare date should default to end of day, got %v", tasks[0].DueDate)
	}
}

func TestForgedStatusValueRepeatsKeyboard(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine()
	from := sender(104, "Оля")
	start(t, m, 5, from)

	m.Handle(ctx, 5, from, dialog.CommandEvent("/create"))
	m.Handle(ctx, 5, from, dialog.TextEvent("Підроблений статус"))
	m.Handle(ctx, 5, from, dialog.ActionEvent("skipDescription", nil))

	replies := m.Handle(ctx, 5, from, dialog.ActionEvent("setTaskStatus", map[string]string{"status": "hacked"}))
	if !strings.Contains(allText(replies), messages.ChooseStatus()) {
		t.Fatalf("expected status keyboard re-sent, got %+v", replies)
	}
	// Free text on a button-only step repeats the keyboard too.
	replies = m.Handle(ctx, 5, from, dialog.TextEvent("completed"))
	if !strings.Contains(allText(replies), messages.ChooseStatus()) {
		t.Fatalf("expected status keyboard for free text, got %+v", replies)
	}
}

func TestOwnershipHidesForeignTasks(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	owner := sender(110, "Власник")
	intruder := sender(111, "Чужий")
	start(t, m, 10, owner)
	start(t, m, 11, intruder)

	ownerUser, _ := st.GetUserByTelegramID(ctx, 110)
	task := &types.Task{UserID: ownerUser.ID, Title: "Приватна", Status: types.StatusPending, Priority: types.PriorityMedium}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	taskID := strconv.FormatInt(task.ID, 10)
	for _, action := range []string{"showTask", "editTaskMenu", "deleteTaskConfirm", "deleteTask"} {
		replies := m.Handle(ctx, 11, intruder, dialog.ActionEvent(action, map[string]string{"task_id": taskID}))
		if !strings.Contains(allText(replies), messages.TaskNotFound()) {
			t.Errorf("%s: foreign task not hidden, got %+v", action, replies)
		}
	}
	if _, err := st.GetTask(ctx, task.ID); err != nil {
		t.Fatalf("task should survive intruder attempts: %v", err)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(120, "Данило")
	start(t, m, 20, from)

	user, _ := st.GetUserByTelegramID(ctx, 120)
	task := &types.Task{UserID: user.ID, Title: "На видалення", Status: types.StatusPending, Priority: types.PriorityLow}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	replies := m.Handle(ctx, 20, from, dialog.ActionEvent("deleteTaskConfirm", map[string]string{"task_id": strconv.FormatInt(task.ID, 10)}))
	if !strings.Contains(allText(replies), messages.DeleteConfirmPrompt()) {
		t.Fatalf("expected confirmation prompt, got %+v", replies)
	}
	if _, err := st.GetTask(ctx, task.ID); err != nil {
		t.Fatal("task deleted before confirmation")
	}

	replies = press(t, m, 20, from, findButton(t, replies, "deleteTask"))
	if !strings.Contains(allText(replies), messages.TaskDeleted()) {
		t.Fatalf("expected deletion confirmation, got %+v", replies)
	}
	if _, err := st.GetTask(ctx, task.ID); err == nil {
		t.Fatal("task still present after confirmed delete")
	}
}

func TestEditTitleFlow(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(130, "Марія")
	start(t, m, 30, from)

	user, _ := st.GetUserByTelegramID(ctx, 130)
	task := &types.Task{UserID: user.ID, Title: "Стара назва", Status: types.StatusPending, Priority: types.PriorityMedium}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	m.Handle(ctx, 30, from, dialog.ActionEvent("editTitle", map[string]string{"task_id": strconv.FormatInt(task.ID, 10)}))
	replies := m.Handle(ctx, 30, from, dialog.TextEvent("Нова назва"))
	if !strings.Contains(allText(replies), messages.TitleUpdated()) {
		t.Fatalf("expected title update confirmation, got %+v", replies)
	}
	got, _ := st.GetTask(ctx, task.ID)
	if got.Title != "Нова назва" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestSearchAndFilter(t *testing.T) {
	ctx := context.Background()
	m, st := newTestMachine()
	from := sender(140, "Богдан")
	start(t, m, 40, from)

	user, _ := st.GetUserByTelegramID(ctx, 140)
	seed := []*types.Task{
		{UserID: user.ID, Title: "Купити хліб", Status: types.StatusPending, Priority: types.PriorityLow},
		{UserID: user.ID, Title: "Звіт", Description: "купити нічого не треба", Status: types.StatusCompleted, Priority: types.PriorityHigh},
		{UserID: user.ID, Title: "Дзвінок", Status: types.StatusPending, Priority: types.PriorityHigh},
	}
	for _, task := range seed {
		if err := st.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	m.Handle(ctx, 40, from, dialog.CommandEvent("/search"))
	replies := m.Handle(ctx, 40, from, dialog.TextEvent("купити"))
	if got := buttonCount(replies); got != 2 {
		t.Errorf("search matched %d tasks, want 2 (title and description)", got)
	}

	replies = m.Handle(ctx, 40, from, dialog.ActionEvent("applyFilter", map[string]string{"status": "pending"}))
	// Two pending tasks plus the filter-again button.
	if got := buttonCount(replies); got != 3 {
		t.Errorf("status filter returned %d buttons, want 3", got)
	}

	replies = m.Handle(ctx, 40, from, dialog.ActionEvent("applyFilter", map[string]string{"priority": "medium"}))
	if !strings.Contains(allText(replies), messages.NoTasksForFilter()) {
		t.Errorf("expected empty filter message, got %+v", replies)
	}
}

func buttonCount(replies []dialog.Reply) int {
	n := 0
	for _, r := range replies {
		n += len(r.Buttons)
	}
	return n
}

func TestConcurrentTextEventsOneWins(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine()
	from := sender(145, "Степан")
	start(t, m, 45, from)
	m.Handle(ctx, 45, from, dialog.CommandEvent("/create"))

	// Duplicate delivery: both carry the same text, only one may be
	// taken as the title answer.
	results := make(chan []dialog.Reply, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- m.Handle(ctx, 45, from, dialog.TextEvent("Однакова назва"))
		}()
	}
	saved := 0
	for i := 0; i < 2; i++ {
		if strings.Contains(allText(<-results), "Назва збережена") {
			saved++
		}
	}
	if saved != 1 {
		t.Fatalf("title accepted %d times, want exactly 1", saved)
	}
}

func TestTextWithoutPromptFallsBackToHelp(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine()
	from := sender(150, "Юрій")
	start(t, m, 50, from)

	replies := m.Handle(ctx, 50, from, dialog.TextEvent("просто текст"))
	if !strings.Contains(allText(replies), "Доступні команди") {
		t.Fatalf("expected help fallback, got %+v", replies)
	}
}

func TestUnregisteredUserIsAskedToStart(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine()
	from := sender(160, "Невідомий")

	replies := m.Handle(ctx, 60, from, dialog.CommandEvent("/tasks"))
	if !strings.Contains(allText(replies), messages.RegisterFirst()) {
		t.Fatalf("expected registration nudge, got %+v", replies)
	}
}
