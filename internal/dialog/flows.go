package dialog

import (
	"context"
	"log"
	"time"

	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/types"
)

// Creation flow:
// title -> description (skippable) -> status -> priority -> due date
// (skippable) -> commit. Status and priority are button-only steps;
// every other step is free text validated before the prompt advances.

func (m *Machine) actionCreateTaskPrompt(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.setPrompt(ctx, PromptTaskTitle)
	return []Reply{{Text: messages.EnterTitle()}}
}

func (m *Machine) textTaskTitle(ctx context.Context, c *conversation, text string) []Reply {
	if text == "" || len(text) > types.MaxTitleLength {
		return []Reply{{Text: messages.TitleInvalid()}}
	}
	c.set(ctx, keyTaskTitle, text)
	c.setPrompt(ctx, PromptTaskDescription)
	return []Reply{{
		Text:    messages.TitleSaved(text),
		Buttons: []Button{actionButton(messages.BtnSkipDesc, "skipDescription", nil)},
	}}
}

func (m *Machine) textTaskDescription(ctx context.Context, c *conversation, text string) []Reply {
	c.set(ctx, keyTaskDescription, text)
	c.setPrompt(ctx, PromptTaskStatus)
	return []Reply{statusChoiceReply()}
}

func (m *Machine) actionSkipDescription(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.set(ctx, keyTaskDescription, "")
	c.setPrompt(ctx, PromptTaskStatus)
	return []Reply{statusChoiceReply()}
}

func (m *Machine) actionSetTaskStatus(ctx context.Context, c *conversation, params map[string]string) []Reply {
	status := types.TaskStatus(params["status"])
	if !status.Valid() {
		return []Reply{statusChoiceReply()}
	}
	c.set(ctx, keyTaskStatus, string(status))
	c.setPrompt(ctx, PromptTaskPriority)
	return []Reply{priorityChoiceReply()}
}

func (m *Machine) actionSetTaskPriority(ctx context.Context, c *conversation, params map[string]string) []Reply {
	priority := types.TaskPriority(params["priority"])
	if !priority.Valid() {
		return []Reply{priorityChoiceReply()}
	}
	c.set(ctx, keyTaskPriority, string(priority))
	c.setPrompt(ctx, PromptTaskDueDate)
	return []Reply{{
		Text:    messages.EnterDueDate(),
		Buttons: []Button{actionButton(messages.BtnSkipDeadline, "skipTaskDueDate", nil)},
	}}
}

func (m *Machine) textTaskDueDate(ctx context.Context, c *conversation, text string) []Reply {
	due, err := ParseDueDate(text)
	if err != nil {
		return []Reply{{Text: messages.DateInvalid()}}
	}
	c.set(ctx, keyTaskDueDate, due.Format(time.RFC3339))
	return m.commitTask(ctx, c)
}

func (m *Machine) actionSkipTaskDueDate(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.forget(ctx, keyTaskDueDate)
	return m.commitTask(ctx, c)
}

// commitTask creates the task from the collected scratch values and
// clears the flow. The status picked mid-flow is not applied: new
// tasks always start as pending.
func (m *Machine) commitTask(ctx context.Context, c *conversation) []Reply {
	title := c.get(ctx, keyTaskTitle)
	description := c.get(ctx, keyTaskDescription)
	priority := types.TaskPriority(c.get(ctx, keyTaskPriority))
	dueRaw := c.get(ctx, keyTaskDueDate)

	c.clearPrompt(ctx)
	c.forget(ctx, scratchKeys...)

	user := c.user(ctx)
	if user == nil {
		return []Reply{{Text: messages.RegisterFirst()}}
	}
	if !priority.Valid() {
		priority = types.PriorityMedium
	}

	task := &types.Task{
		UserID:      user.ID,
		Title:       title,
		Description: description,
		Status:      types.StatusPending,
		Priority:    priority,
	}
	if dueRaw != "" {
		if due, err := time.Parse(time.RFC3339, dueRaw); err == nil {
			task.DueDate = &due
		}
	}

	if err := m.tasks.CreateTask(ctx, task); err != nil {
		log.Printf("dialog: create task for user %d: %v", user.ID, err)
		return []Reply{{Text: messages.TaskCreateFailed()}}
	}

	replies := []Reply{{Text: messages.TaskCreated(title)}}
	return append(replies, m.actionListTasks(ctx, c, nil)...)
}
