package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/types"
)

func mainMenuButtons() []Button {
	return []Button{
		actionButton(messages.BtnMyTasks, "listTasks", nil),
		actionButton(messages.BtnCreateTask, "createTaskPrompt", nil),
		actionButton(messages.BtnSearchTasks, "searchTaskPrompt", nil),
		actionButton(messages.BtnHelp, "help", nil),
	}
}

func statusButtons(action string, extra map[string]string) []Button {
	statuses := []types.TaskStatus{
		types.StatusPending,
		types.StatusInProgress,
		types.StatusCompleted,
		types.StatusCancelled,
	}
	buttons := make([]Button, 0, len(statuses))
	for _, s := range statuses {
		params := map[string]string{"status": string(s)}
		for k, v := range extra {
			params[k] = v
		}
		buttons = append(buttons, actionButton(messages.StatusLabel(string(s)), action, params))
	}
	return buttons
}

func priorityButtons(action string, extra map[string]string) []Button {
	priorities := []types.TaskPriority{
		types.PriorityLow,
		types.PriorityMedium,
		types.PriorityHigh,
	}
	buttons := make([]Button, 0, len(priorities))
	for _, p := range priorities {
		params := map[string]string{"priority": string(p)}
		for k, v := range extra {
			params[k] = v
		}
		buttons = append(buttons, actionButton(messages.PriorityLabel(string(p)), action, params))
	}
	return buttons
}

func statusChoiceReply() Reply {
	return Reply{
		Text:    messages.ChooseStatus(),
		Buttons: statusButtons("setTaskStatus", nil),
	}
}

func priorityChoiceReply() Reply {
	return Reply{
		Text:    messages.ChoosePriority(),
		Buttons: priorityButtons("setTaskPriority", nil),
	}
}

// taskListReply renders a header line followed by one button per task.
// The button label doubles as the list row: status mark, title, and
// deadline when set.
func taskListReply(header string, tasks []*types.Task) Reply {
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\nЗнайдено задач: %d", len(tasks))

	buttons := make([]Button, 0, len(tasks))
	for _, t := range tasks {
		label := fmt.Sprintf("%s %s", statusMark(t.Status), t.Title)
		if t.DueDate != nil {
			label += " · " + t.DueDate.Format("02.01")
		}
		buttons = append(buttons, actionButton(label, "showTask", taskParams(t.ID)))
	}
	return Reply{Text: b.String(), Buttons: buttons}
}

func statusMark(s types.TaskStatus) string {
	switch s {
	case types.StatusPending:
		return "⏳"
	case types.StatusInProgress:
		return "🔄"
	case types.StatusCompleted:
		return "✅"
	case types.StatusCancelled:
		return "❌"
	}
	return "•"
}

func taskDetailReply(t *types.Task) Reply {
	return Reply{
		Text: messages.TaskDetail(t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate),
		Buttons: []Button{
			actionButton(messages.BtnEdit, "editTaskMenu", taskParams(t.ID)),
			actionButton(messages.BtnDelete, "deleteTaskConfirm", taskParams(t.ID)),
			actionButton(messages.BtnAllTasks, "listTasks", nil),
		},
	}
}

func editMenuReply(taskID int64) Reply {
	p := taskParams(taskID)
	return Reply{
		Text: messages.EditMenuPrompt(),
		Buttons: []Button{
			actionButton(messages.BtnEditTitle, "editTitle", p),
			actionButton(messages.BtnEditDesc, "editDescription", p),
			actionButton(messages.BtnEditStatus, "changeStatus", p),
			actionButton(messages.BtnEditPriority, "changePriority", p),
			actionButton(messages.BtnEditDeadline, "editDeadline", p),
			actionButton(messages.BtnBackToTask, "showTask", p),
		},
	}
}

func filterMenuReply() Reply {
	return Reply{
		Text: messages.FilterMenuPrompt(),
		Buttons: []Button{
			actionButton(messages.BtnFilterStatus, "filterByStatusMenu", nil),
			actionButton(messages.BtnFilterPriority, "filterByPriorityMenu", nil),
			actionButton(messages.BtnFilterDeadline, "filterByDeadlinePrompt", nil),
			actionButton(messages.BtnBack, "listTasks", nil),
		},
	}
}

func taskParams(id int64) map[string]string {
	return map[string]string{"task_id": strconv.FormatInt(id, 10)}
}
