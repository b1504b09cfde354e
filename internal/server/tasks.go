package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/AndriyMV/task-manager-bot/types"
)

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Status string `json:"status" example:"ok"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status" example:"ok"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})
}

type taskListInput struct {
	UserID   int64  `query:"user_id"`
	Status   string `query:"status"`
	Priority string `query:"priority"`
	DueFrom  string `query:"due_from" doc:"RFC 3339 lower bound on due date"`
	DueTo    string `query:"due_to" doc:"RFC 3339 upper bound on due date"`
	Query    string `query:"q" doc:"Case-insensitive substring over title and description"`
}

func (in *taskListInput) filter() (types.TaskFilter, error) {
	filter := types.TaskFilter{
		UserID: in.UserID,
		Query:  strings.TrimSpace(in.Query),
	}
	if in.Status != "" {
		status := types.TaskStatus(in.Status)
		if !status.Valid() {
			return filter, newAPIError(http.StatusBadRequest, "bad_request", "unknown status: "+in.Status)
		}
		filter.Status = status
	}
	if in.Priority != "" {
		priority := types.TaskPriority(in.Priority)
		if !priority.Valid() {
			return filter, newAPIError(http.StatusBadRequest, "bad_request", "unknown priority: "+in.Priority)
		}
		filter.Priority = priority
	}
	if in.DueFrom != "" {
		t, err := time.Parse(time.RFC3339, in.DueFrom)
		if err != nil {
			return filter, newAPIError(http.StatusBadRequest, "bad_request", "due_from must be RFC 3339")
		}
		filter.DueFrom = &t
	}
	if in.DueTo != "" {
		t, err := time.Parse(time.RFC3339, in.DueTo)
		if err != nil {
			return filter, newAPIError(http.StatusBadRequest, "bad_request", "due_to must be RFC 3339")
		}
		filter.DueTo = &t
	}
	return filter, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", "title is required")
	}
	if len(title) > types.MaxTitleLength {
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", "title must be at most 255 characters")
	}
	return nil
}

func registerTasks(api huma.API, tasks types.TaskStore, users types.UserStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *taskListInput) (*struct {
		Body struct {
			Tasks []TaskResponse `json:"tasks"`
		}
	}, error) {
		filter, err := input.filter()
		if err != nil {
			return nil, handleError(err)
		}
		list, err := tasks.ListTasks(ctx, filter)
		if err != nil {
			return nil, handleError(err)
		}
		resp := &struct {
			Body struct {
				Tasks []TaskResponse `json:"tasks"`
			}
		}{}
		resp.Body.Tasks = taskResponses(list)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		if input.Body.UserID <= 0 {
			return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "user_id is required")
		}
		if err := validateTitle(input.Body.Title); err != nil {
			return nil, handleError(err)
		}
		if _, err := users.GetUserByID(ctx, input.Body.UserID); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "user does not exist")
			}
			return nil, handleError(err)
		}

		status := types.StatusPending
		if input.Body.Status != "" {
			status = types.TaskStatus(input.Body.Status)
			if !status.Valid() {
				return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "unknown status: "+input.Body.Status)
			}
		}
		priority := types.PriorityMedium
		if input.Body.Priority != "" {
			priority = types.TaskPriority(input.Body.Priority)
			if !priority.Valid() {
				return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "unknown priority: "+input.Body.Priority)
			}
		}

		task := &types.Task{
			UserID:      input.Body.UserID,
			Title:       strings.TrimSpace(input.Body.Title),
			Description: input.Body.Description,
			Status:      status,
			Priority:    priority,
			DueDate:     input.Body.DueDate,
		}
		if err := tasks.CreateTask(ctx, task); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		task, err := tasks.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID   int64             `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		patch := types.TaskPatch{
			Description: input.Body.Description,
			DueDate:     input.Body.DueDate,
		}
		if input.Body.Title != nil {
			if err := validateTitle(*input.Body.Title); err != nil {
				return nil, handleError(err)
			}
			title := strings.TrimSpace(*input.Body.Title)
			patch.Title = &title
		}
		if input.Body.Status != nil {
			status := types.TaskStatus(*input.Body.Status)
			if !status.Valid() {
				return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "unknown status: "+*input.Body.Status)
			}
			patch.Status = &status
		}
		if input.Body.Priority != nil {
			priority := types.TaskPriority(*input.Body.Priority)
			if !priority.Valid() {
				return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "unknown priority: "+*input.Body.Priority)
			}
			patch.Priority = &priority
		}

		task, err := tasks.UpdateTask(ctx, input.ID, patch)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete task",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct{}, error) {
		if err := tasks.DeleteTask(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerAttachments(api huma.API, tasks types.TaskStore) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-attachment",
		Method:        http.MethodPost,
		Path:          "/tasks/{id}/attachments",
		Summary:       "Attach a file or link to a task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ID   int64                   `path:"id"`
		Body CreateAttachmentRequest `json:"body"`
	}) (*struct {
		Body AttachmentResponse `json:"body"`
	}, error) {
		if input.Body.Type == "" {
			return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "type is required")
		}
		if input.Body.FileID == "" && input.Body.FileURL == "" {
			return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "file_id or file_url is required")
		}
		// Attachment rows require a live parent task.
		if _, err := tasks.GetTask(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		att := &types.Attachment{
			TaskID:       input.ID,
			Type:         input.Body.Type,
			FileID:       input.Body.FileID,
			FileURL:      input.Body.FileURL,
			OriginalName: input.Body.OriginalName,
			MimeType:     input.Body.MimeType,
		}
		if err := tasks.CreateAttachment(ctx, att); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body AttachmentResponse `json:"body"`
		}{Body: attachmentResponse(att)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-attachments",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/attachments",
		Summary:     "List task attachments",
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body struct {
			Attachments []AttachmentResponse `json:"attachments"`
		}
	}, error) {
		if _, err := tasks.GetTask(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		list, err := tasks.ListAttachments(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		resp := &struct {
			Body struct {
				Attachments []AttachmentResponse `json:"attachments"`
			}
		}{}
		resp.Body.Attachments = make([]AttachmentResponse, 0, len(list))
		for _, a := range list {
			resp.Body.Attachments = append(resp.Body.Attachments, attachmentResponse(a))
		}
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-attachment",
		Method:        http.MethodDelete,
		Path:          "/attachments/{id}",
		Summary:       "Delete attachment",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct{}, error) {
		if err := tasks.DeleteAttachment(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerUsers(api huma.API, users types.UserStore) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-user",
		Method:      http.MethodPost,
		Path:        "/users",
		Summary:     "Register or refresh a Telegram user",
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body UpsertUserRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		if input.Body.TelegramID <= 0 {
			return nil, newAPIError(http.StatusUnprocessableEntity, "validation_failed", "telegram_id is required")
		}
		user, err := users.UpsertUser(ctx, types.User{
			TelegramID: input.Body.TelegramID,
			Username:   input.Body.Username,
			FirstName:  input.Body.FirstName,
			LastName:   input.Body.LastName,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(user)}, nil
	})
}
