package dialog

import (
	"fmt"
	"net/url"
	"strings"
)

type EventKind int

const (
	EventCommand EventKind = iota
	EventAction
	EventText
)

// Event is one inbound occurrence in a conversation: a slash command,
// a button press carrying parameters, or free text.
type Event struct {
	Kind   EventKind
	Name   string
	Params map[string]string
	Text   string
}

func CommandEvent(name string) Event {
	return Event{Kind: EventCommand, Name: name}
}

func ActionEvent(name string, params map[string]string) Event {
	if params == nil {
		params = map[string]string{}
	}
	return Event{Kind: EventAction, Name: name, Params: params}
}

func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// EncodeAction packs an action and its parameters into callback data,
// e.g. "showTask?task_id=7". Telegram limits callback data to 64
// bytes, so parameter bags stay small (ids and enum values).
func EncodeAction(name string, params map[string]string) string {
	if len(params) == 0 {
		return name
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return name + "?" + values.Encode()
}

func DecodeAction(data string) (string, map[string]string, error) {
	name, rawQuery, _ := strings.Cut(data, "?")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid callback data: %q", data)
	}
	params := map[string]string{}
	if rawQuery != "" {
		values, err := url.ParseQuery(rawQuery)
		if err != nil {
			return "", nil, fmt.Errorf("invalid callback data: %q", data)
		}
		for k := range values {
			params[k] = values.Get(k)
		}
	}
	return name, params, nil
}

// Button is one inline keyboard button: a label plus encoded action
// callback data.
type Button struct {
	Label string
	Data  string
}

func actionButton(label, action string, params map[string]string) Button {
	return Button{Label: label, Data: EncodeAction(action, params)}
}

// Reply is what the transport renders back: message text plus an
// optional inline keyboard.
type Reply struct {
	Text    string
	Buttons []Button
}
