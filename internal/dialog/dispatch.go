package dialog

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/types"
)

func (m *Machine) actionHelp(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.clearPrompt(ctx)
	return []Reply{{Text: messages.Help(), Buttons: mainMenuButtons()}}
}

func (m *Machine) actionListTasks(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.clearPrompt(ctx)
	user := c.user(ctx)
	if user == nil {
		return []Reply{{Text: messages.RegisterFirst()}}
	}
	tasks, err := m.tasks.ListTasks(ctx, types.TaskFilter{UserID: user.ID})
	if err != nil {
		log.Printf("dialog: list tasks for user %d: %v", user.ID, err)
		return []Reply{{Text: messages.ErrorDefault()}}
	}
	if len(tasks) == 0 {
		return []Reply{{
			Text: messages.NoTasksYet(),
			Buttons: []Button{
				actionButton(messages.BtnCreateTask, "createTaskPrompt", nil),
				actionButton(messages.BtnSearchTasks, "searchTaskPrompt", nil),
			},
		}}
	}
	return []Reply{taskListReply(messages.ResultsHeader(), tasks)}
}

// ownedTask resolves params["task_id"] to a task belonging to the
// conversation's user. Any mismatch, including another user's task,
// reads as not found.
func (m *Machine) ownedTask(ctx context.Context, c *conversation, params map[string]string) (*types.Task, bool) {
	user := c.user(ctx)
	if user == nil {
		return nil, false
	}
	id, err := strconv.ParseInt(params["task_id"], 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	task, err := m.tasks.GetTask(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			log.Printf("dialog: get task %d: %v", id, err)
		}
		return nil, false
	}
	if task.UserID != user.ID {
		return nil, false
	}
	return task, true
}

func (m *Machine) actionShowTask(ctx context.Context, c *conversation, params map[string]string) []Reply {
	c.clearPrompt(ctx)
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return []Reply{taskDetailReply(task)}
}

// Edit flow

func (m *Machine) actionEditTaskMenu(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return []Reply{editMenuReply(task.ID)}
}

// beginFieldEdit stashes the task id and arms the prompt for the next
// text message.
func (m *Machine) beginFieldEdit(ctx context.Context, c *conversation, params map[string]string, p Prompt, text string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	c.set(ctx, keyEditTaskID, strconv.FormatInt(task.ID, 10))
	c.setPrompt(ctx, p)
	return []Reply{{
		Text:    text,
		Buttons: []Button{actionButton(messages.BtnBackToTask, "showTask", taskParams(task.ID))},
	}}
}

func (m *Machine) actionEditTitle(ctx context.Context, c *conversation, params map[string]string) []Reply {
	return m.beginFieldEdit(ctx, c, params, PromptNewTitle, messages.EnterNewTitle())
}

func (m *Machine) actionEditDescription(ctx context.Context, c *conversation, params map[string]string) []Reply {
	return m.beginFieldEdit(ctx, c, params, PromptNewDescription, messages.EnterNewDescription())
}

func (m *Machine) actionEditDeadline(ctx context.Context, c *conversation, params map[string]string) []Reply {
	return m.beginFieldEdit(ctx, c, params, PromptNewDeadline, messages.EnterNewDeadline())
}

func (m *Machine) actionChangeStatus(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return []Reply{{
		Text:    messages.ChooseStatus(),
		Buttons: statusButtons("updateTaskStatus", taskParams(task.ID)),
	}}
}

func (m *Machine) actionChangePriority(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return []Reply{{
		Text:    messages.ChoosePriority(),
		Buttons: priorityButtons("updateTaskPriority", taskParams(task.ID)),
	}}
}

// applyPatch updates an owned task and re-renders its detail card.
func (m *Machine) applyPatch(ctx context.Context, c *conversation, taskID int64, patch types.TaskPatch, confirmation string) []Reply {
	updated, err := m.tasks.UpdateTask(ctx, taskID, patch)
	if err != nil {
		log.Printf("dialog: update task %d: %v", taskID, err)
		return []Reply{{Text: messages.UpdateFailed()}}
	}
	return []Reply{{Text: confirmation}, taskDetailReply(updated)}
}

func (m *Machine) actionUpdateTaskStatus(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	status := types.TaskStatus(params["status"])
	if !status.Valid() {
		return []Reply{{
			Text:    messages.ChooseStatus(),
			Buttons: statusButtons("updateTaskStatus", taskParams(task.ID)),
		}}
	}
	return m.applyPatch(ctx, c, task.ID, types.TaskPatch{Status: &status}, messages.StatusUpdated())
}

func (m *Machine) actionUpdateTaskPriority(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	priority := types.TaskPriority(params["priority"])
	if !priority.Valid() {
		return []Reply{{
			Text:    messages.ChoosePriority(),
			Buttons: priorityButtons("updateTaskPriority", taskParams(task.ID)),
		}}
	}
	return m.applyPatch(ctx, c, task.ID, types.TaskPatch{Priority: &priority}, messages.PriorityUpdated())
}

// editedTask resolves the task stashed by beginFieldEdit, re-checking
// ownership in case the task vanished mid-flow.
func (m *Machine) editedTask(ctx context.Context, c *conversation) (*types.Task, bool) {
	id := c.get(ctx, keyEditTaskID)
	if id == "" {
		return nil, false
	}
	return m.ownedTask(ctx, c, map[string]string{"task_id": id})
}

func (m *Machine) finishFieldEdit(ctx context.Context, c *conversation, patch types.TaskPatch, confirmation string) []Reply {
	task, ok := m.editedTask(ctx, c)
	c.clearPrompt(ctx)
	c.forget(ctx, keyEditTaskID)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return m.applyPatch(ctx, c, task.ID, patch, confirmation)
}

func (m *Machine) textNewTitle(ctx context.Context, c *conversation, text string) []Reply {
	if text == "" || len(text) > types.MaxTitleLength {
		return []Reply{{Text: messages.TitleInvalid()}}
	}
	return m.finishFieldEdit(ctx, c, types.TaskPatch{Title: &text}, messages.TitleUpdated())
}

func (m *Machine) textNewDescription(ctx context.Context, c *conversation, text string) []Reply {
	return m.finishFieldEdit(ctx, c, types.TaskPatch{Description: &text}, messages.DescriptionUpdated())
}

func (m *Machine) textNewDeadline(ctx context.Context, c *conversation, text string) []Reply {
	due, err := ParseDueDate(text)
	if err != nil {
		return []Reply{{Text: messages.DateInvalid()}}
	}
	return m.finishFieldEdit(ctx, c, types.TaskPatch{DueDate: &due}, messages.DeadlineUpdated())
}

// Delete flow: two steps, the destructive action is reachable only
// from the confirmation keyboard.

func (m *Machine) actionDeleteTaskConfirm(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	return []Reply{{
		Text: messages.DeleteConfirmPrompt(),
		Buttons: []Button{
			actionButton(messages.BtnConfirmDelete, "deleteTask", taskParams(task.ID)),
			actionButton(messages.BtnCancel, "showTask", taskParams(task.ID)),
		},
	}}
}

func (m *Machine) actionDeleteTask(ctx context.Context, c *conversation, params map[string]string) []Reply {
	task, ok := m.ownedTask(ctx, c, params)
	if !ok {
		return []Reply{{Text: messages.TaskNotFound()}}
	}
	if err := m.tasks.DeleteTask(ctx, task.ID); err != nil {
		log.Printf("dialog: delete task %d: %v", task.ID, err)
		return []Reply{{Text: messages.DeleteFailed()}}
	}
	replies := []Reply{{Text: messages.TaskDeleted()}}
	return append(replies, m.actionListTasks(ctx, c, nil)...)
}

// Search

func (m *Machine) actionSearchTaskPrompt(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.setPrompt(ctx, PromptSearchQuery)
	return []Reply{{Text: messages.SearchPrompt()}}
}

func (m *Machine) textSearchQuery(ctx context.Context, c *conversation, text string) []Reply {
	if text == "" {
		return []Reply{{Text: messages.SearchPrompt()}}
	}
	c.clearPrompt(ctx)
	user := c.user(ctx)
	if user == nil {
		return []Reply{{Text: messages.RegisterFirst()}}
	}
	tasks, err := m.tasks.ListTasks(ctx, types.TaskFilter{UserID: user.ID, Query: text})
	if err != nil {
		log.Printf("dialog: search tasks for user %d: %v", user.ID, err)
		return []Reply{{Text: messages.ErrorDefault()}}
	}
	if len(tasks) == 0 {
		return []Reply{{
			Text:    messages.NoTasksFound(),
			Buttons: []Button{actionButton(messages.BtnSearchTasks, "searchTaskPrompt", nil)},
		}}
	}
	return []Reply{taskListReply(messages.ResultsHeader(), tasks)}
}

// Filters

func (m *Machine) actionFilterMenu(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.clearPrompt(ctx)
	return []Reply{filterMenuReply()}
}

func (m *Machine) actionFilterByStatusMenu(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	return []Reply{{
		Text:    messages.FilterStatusPrompt(),
		Buttons: append(statusButtons("applyFilter", nil), actionButton(messages.BtnBack, "filterMenu", nil)),
	}}
}

func (m *Machine) actionFilterByPriorityMenu(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	return []Reply{{
		Text:    messages.FilterPriorityPrompt(),
		Buttons: append(priorityButtons("applyFilter", nil), actionButton(messages.BtnBack, "filterMenu", nil)),
	}}
}

func (m *Machine) actionFilterByDeadlinePrompt(ctx context.Context, c *conversation, _ map[string]string) []Reply {
	c.setPrompt(ctx, PromptDeadlineFilter)
	return []Reply{{Text: messages.FilterDeadlinePrompt()}}
}

func (m *Machine) textDeadlineFilter(ctx context.Context, c *conversation, text string) []Reply {
	from, to, err := ParseFilterDate(text)
	if err != nil {
		return []Reply{{Text: messages.DateInvalid()}}
	}
	c.clearPrompt(ctx)
	return m.runFilter(ctx, c, types.TaskFilter{DueFrom: &from, DueTo: &to})
}

func (m *Machine) actionApplyFilter(ctx context.Context, c *conversation, params map[string]string) []Reply {
	filter := types.TaskFilter{}
	if status := types.TaskStatus(params["status"]); params["status"] != "" {
		if !status.Valid() {
			return m.actionFilterByStatusMenu(ctx, c, nil)
		}
		filter.Status = status
	}
	if priority := types.TaskPriority(params["priority"]); params["priority"] != "" {
		if !priority.Valid() {
			return m.actionFilterByPriorityMenu(ctx, c, nil)
		}
		filter.Priority = priority
	}
	return m.runFilter(ctx, c, filter)
}

func (m *Machine) runFilter(ctx context.Context, c *conversation, filter types.TaskFilter) []Reply {
	user := c.user(ctx)
	if user == nil {
		return []Reply{{Text: messages.RegisterFirst()}}
	}
	filter.UserID = user.ID
	tasks, err := m.tasks.ListTasks(ctx, filter)
	if err != nil {
		log.Printf("dialog: filter tasks for user %d: %v", user.ID, err)
		return []Reply{{Text: messages.ErrorDefault()}}
	}
	if len(tasks) == 0 {
		return []Reply{{
			Text:    messages.NoTasksForFilter(),
			Buttons: []Button{actionButton(messages.BtnBackToFilters, "filterMenu", nil)},
		}}
	}
	reply := taskListReply(messages.ResultsHeader(), tasks)
	reply.Buttons = append(reply.Buttons, actionButton(messages.BtnFilterAgain, "filterMenu", nil))
	return []Reply{reply}
}
