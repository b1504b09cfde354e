package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AndriyMV/task-manager-bot/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	handler := New(Config{Tasks: st, Users: st, BasePath: "/api"})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func seedUser(t *testing.T, url string) UserResponse {
	t.Helper()
	res, data := doJSON(t, http.MethodPost, url+"/api/users", map[string]any{
		"telegram_id": 42,
		"username":    "tester",
		"first_name":  "Тест",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("upsert user status %d: %s", res.StatusCode, string(data))
	}
	var user UserResponse
	if err := json.Unmarshal(data, &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	return user
}

func TestTaskLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	user := seedUser(t, srv.URL)

	res, data := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"user_id": user.ID,
		"title":   "Ship release",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Status != "pending" || created.Priority != "medium" {
		t.Errorf("defaults = %s/%s, want pending/medium", created.Status, created.Priority)
	}

	taskURL := srv.URL + "/api/tasks/" + itoa(created.ID)
	res, data = doJSON(t, http.MethodPut, taskURL, map[string]any{
		"status":   "in_progress",
		"priority": "high",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update status %d: %s", res.StatusCode, string(data))
	}
	var updated TaskResponse
	_ = json.Unmarshal(data, &updated)
	if updated.Status != "in_progress" || updated.Priority != "high" {
		t.Errorf("after patch = %s/%s", updated.Status, updated.Priority)
	}
	if updated.Title != "Ship release" {
		t.Errorf("patch touched title: %q", updated.Title)
	}

	res, _ = doJSON(t, http.MethodDelete, taskURL, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodGet, taskURL, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d, want 404", res.StatusCode)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	user := seedUser(t, srv.URL)

	cases := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			name: "missing title",
			body: map[string]any{"user_id": user.ID},
			code: "validation_failed",
		},
		{
			name: "missing user",
			body: map[string]any{"title": "x"},
			code: "validation_failed",
		},
		{
			name: "unknown user",
			body: map[string]any{"user_id": 999, "title": "x"},
			code: "validation_failed",
		},
		{
			name: "bad status",
			body: map[string]any{"user_id": user.ID, "title": "x", "status": "paused"},
			code: "validation_failed",
		},
		{
			name: "title too long",
			body: map[string]any{"user_id": user.ID, "title": strings.Repeat("x", 300)},
			code: "validation_failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, data := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", tc.body)
			if res.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status %d: %s", res.StatusCode, string(data))
			}
			var envelope struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(data, &envelope); err != nil {
				t.Fatalf("unmarshal envelope: %v", err)
			}
			if envelope.Error.Code != tc.code {
				t.Errorf("code = %q, want %q", envelope.Error.Code, tc.code)
			}
		})
	}
}

func TestListTasksFiltering(t *testing.T) {
	srv, _ := newTestServer(t)
	user := seedUser(t, srv.URL)

	due := time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)
	seed := []map[string]any{
		{"user_id": user.ID, "title": "Купити хліб", "priority": "low"},
		{"user_id": user.ID, "title": "Звіт", "description": "річний звіт", "status": "completed", "priority": "high", "due_date": due.Format(time.RFC3339)},
		{"user_id": user.ID, "title": "Дзвінок", "priority": "high"},
	}
	for _, body := range seed {
		if res, data := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", body); res.StatusCode != http.StatusCreated {
			t.Fatalf("seed status %d: %s", res.StatusCode, string(data))
		}
	}

	list := func(t *testing.T, query string) []TaskResponse {
		t.Helper()
		res, data := doJSON(t, http.MethodGet, srv.URL+"/api/tasks"+query, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("list status %d: %s", res.StatusCode, string(data))
		}
		var body struct {
			Tasks []TaskResponse `json:"tasks"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("unmarshal list: %v", err)
		}
		return body.Tasks
	}

	if got := list(t, ""); len(got) != 3 {
		t.Errorf("unfiltered: %d tasks, want 3", len(got))
	}
	if got := list(t, "?status=completed"); len(got) != 1 || got[0].Title != "Звіт" {
		t.Errorf("status filter: %+v", got)
	}
	if got := list(t, "?priority=high&status=pending"); len(got) != 1 || got[0].Title != "Дзвінок" {
		t.Errorf("AND filter: %+v", got)
	}
	if got := list(t, "?q=%D0%B7%D0%B2%D1%96%D1%82"); len(got) != 1 {
		t.Errorf("search by substring: %+v", got)
	}
	from := due.Add(-time.Hour).Format(time.RFC3339)
	to := due.Add(time.Hour).Format(time.RFC3339)
	if got := list(t, "?due_from="+from+"&due_to="+to); len(got) != 1 || got[0].Title != "Звіт" {
		t.Errorf("due range filter: %+v", got)
	}

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/tasks?status=bogus", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad status filter: status %d, want 400", res.StatusCode)
	}
}

func TestAttachments(t *testing.T) {
	srv, _ := newTestServer(t)
	user := seedUser(t, srv.URL)

	res, data := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"user_id": user.ID,
		"title":   "З файлом",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}
	var task TaskResponse
	_ = json.Unmarshal(data, &task)

	taskURL := srv.URL + "/api/tasks/" + itoa(task.ID)
	res, data = doJSON(t, http.MethodPost, taskURL+"/attachments", map[string]any{
		"type":          "document",
		"file_id":       "BAACAgIAAxkBAAIB",
		"original_name": "report.pdf",
		"mime_type":     "application/pdf",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create attachment status %d: %s", res.StatusCode, string(data))
	}
	var att AttachmentResponse
	_ = json.Unmarshal(data, &att)

	res, data = doJSON(t, http.MethodPost, taskURL+"/attachments", map[string]any{"type": "document"})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("attachment without file ref: status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, http.MethodGet, taskURL+"/attachments", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list attachments status %d: %s", res.StatusCode, string(data))
	}
	var listBody struct {
		Attachments []AttachmentResponse `json:"attachments"`
	}
	if err := json.Unmarshal(data, &listBody); err != nil {
		t.Fatalf("unmarshal attachments: %v", err)
	}
	if len(listBody.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(listBody.Attachments))
	}

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/attachments/"+itoa(att.ID), nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete attachment status %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/attachments/"+itoa(att.ID), nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete status %d, want 404", res.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	res, data := doJSON(t, http.MethodGet, srv.URL+"/api/healthz", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d: %s", res.StatusCode, string(data))
	}
	if res.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
