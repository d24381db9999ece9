package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const maxRawMessage = 200

// globalKeys are payload keys that never name a form field.
var globalKeys = map[string]bool{
	"non_field_errors": true,
	"detail":           true,
	"details":          true,
	"error":            true,
	"message":          true,
}

// truncate cuts text to at most n runes.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

// FormErrors is the fixed shape every error payload is translated into: field
// messages keyed by form field name plus messages that belong to no field.
type FormErrors struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Global []string            `json:"global,omitempty"`
}

// ParseFormErrors translates a raw server error payload. It is the only place
// that knows the backend's error shapes:
//
//	{"full_name": ["This field is required."]}       -> field error
//	{"non_field_errors": ["..."]}, {"detail": "..."}  -> global
//	["..."], "..."                                   -> global
//	anything that is not JSON                        -> global (truncated text)
func ParseFormErrors(body []byte) FormErrors {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return FormErrors{}
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return FormErrors{Global: []string{truncate(string(trimmed), maxRawMessage)}}
	}

	var f FormErrors
	obj, ok := payload.(map[string]any)
	if !ok {
		f.Global = messages(payload)
		return f
	}
	for _, key := range sortedKeys(obj) {
		msgs := messages(obj[key])
		if globalKeys[key] {
			f.Global = append(f.Global, msgs...)
			continue
		}
		for _, m := range msgs {
			f.Add(key, m)
		}
	}
	return f
}

func messages(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, messages(item)...)
		}
		return out
	case map[string]any:
		var out []string
		for _, k := range sortedKeys(t) {
			for _, m := range messages(t[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add records a message against a named field.
func (f *FormErrors) Add(field, msg string) {
	if f.Fields == nil {
		f.Fields = make(map[string][]string)
	}
	f.Fields[field] = append(f.Fields[field], msg)
}

// AddGlobal records a message that belongs to no field.
func (f *FormErrors) AddGlobal(msg string) {
	f.Global = append(f.Global, msg)
}

func (f FormErrors) Field(name string) []string {
	return f.Fields[name]
}

func (f FormErrors) HasFieldErrors() bool {
	return len(f.Fields) > 0
}

func (f FormErrors) Empty() bool {
	return len(f.Fields) == 0 && len(f.Global) == 0
}

// FieldNames returns the fields with errors in sorted order.
func (f FormErrors) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Message joins the global messages.
func (f FormErrors) Message() string {
	return strings.Join(f.Global, "; ")
}

func (f FormErrors) String() string {
	parts := append([]string{}, f.Global...)
	parts = append(parts, f.flatFields()...)
	return strings.Join(parts, "; ")
}

func (f FormErrors) flatFields() []string {
	var out []string
	for _, name := range f.FieldNames() {
		for _, m := range f.Fields[name] {
			out = append(out, name+": "+m)
		}
	}
	return out
}
