package service

import (
	"encoding/json"
	"testing"
)

func TestTimestamp_Forms(t *testing.T) {
	var v struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
		C Timestamp `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"1508369194377","b":1508369194377,"c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ms, ok := v.A.Millis(); !ok || ms != 1508369194377 {
		t.Errorf("string form: got %d %v", ms, ok)
	}
	if ms, ok := v.B.Millis(); !ok || ms != 1508369194377 {
		t.Errorf("number form: got %d %v", ms, ok)
	}
	if _, ok := v.C.Millis(); ok {
		t.Error("expected null to be unset")
	}
}

func TestTask_KeepsRawDocument(t *testing.T) {
	doc := `{"id":"abc123","custom_id":"DEV-1","name":"Ship it","status":{"status":"open"},"unknown_field":{"x":1}}`

	var task Task
	if err := json.Unmarshal([]byte(doc), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.ID != "abc123" || task.CustomID != "DEV-1" || task.Status.Status != "open" {
		t.Errorf("unexpected decode: %+v", task)
	}

	out, err := json.Marshal(struct {
		Tasks []Task `json:"tasks"`
	}{Tasks: []Task{task}})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"tasks":[`+doc+`]}` {
		t.Errorf("expected raw document preserved, got %s", out)
	}
}

func TestTask_MarshalWithoutRaw(t *testing.T) {
	out, err := json.Marshal(Space{ID: "7", Name: "Eng"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"id":"7","name":"Eng","private":false,"archived":false}` {
		t.Errorf("unexpected output %s", out)
	}
}

func TestUser_DisplayName(t *testing.T) {
	if got := (User{Username: "ada", Email: "a@x"}).DisplayName(); got != "ada" {
		t.Errorf("expected username, got %q", got)
	}
	if got := (User{Email: "a@x"}).DisplayName(); got != "a@x" {
		t.Errorf("expected email, got %q", got)
	}
}
