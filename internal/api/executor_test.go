package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"clickup/internal/api"
)

func newExecutor(t *testing.T, srv *httptest.Server, key string) *api.Executor {
	t.Helper()
	return api.New(api.Config{
		APIKey:     key,
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestDo_SuccessRoundTrip(t *testing.T) {
	docs := []string{
		`{"id":"abc123","name":"Write docs","tags":[{"name":"x"}],"priority":null}`,
		`[1,2,3]`,
		`"plain"`,
		`{}`,
		`null`,
	}
	for _, doc := range docs {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, doc)
		}))

		got, err := newExecutor(t, srv, "pk_test").Do(context.Background(), api.Request{
			Method: http.MethodGet,
			Path:   "/api/v2/task/abc123",
		})
		srv.Close()
		if err != nil {
			t.Fatalf("doc %s: unexpected error: %v", doc, err)
		}

		var want, have any
		if err := json.Unmarshal([]byte(doc), &want); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(got, &have); err != nil {
			t.Fatalf("doc %s: result is not JSON: %v", doc, err)
		}
		if !reflect.DeepEqual(want, have) {
			t.Errorf("doc %s: got %s", doc, got)
		}
	}
}

func TestDo_SendsHeadersAndBody(t *testing.T) {
	var (
		gotAuth, gotType, gotLength string
		gotMethod, gotPath         string
		gotBody                    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotLength = r.Header.Get("Content-Length")
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"id":"t1"}`)
	}))
	defer srv.Close()

	body := map[string]any{"name": "Café ☕"}
	_, err := newExecutor(t, srv, "pk_123_ABC").Do(context.Background(), api.Request{
		Method: http.MethodPost,
		Path:   "/api/v2/list/900/task",
		Body:   body,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "pk_123_ABC" {
		t.Errorf("expected raw key in Authorization, got %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("expected application/json, got %q", gotType)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v2/list/900/task" {
		t.Errorf("unexpected request line %s %s", gotMethod, gotPath)
	}
	want, _ := json.Marshal(body)
	if string(gotBody) != string(want) {
		t.Errorf("expected body %s, got %s", want, gotBody)
	}
	if gotLength != strconv.Itoa(len(want)) {
		t.Errorf("expected Content-Length %d, got %q", len(want), gotLength)
	}
}

func TestDo_NoBodyOnGet(t *testing.T) {
	var gotLength int64 = -2
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	if _, err := newExecutor(t, srv, "k").Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/api/v2/team"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLength != 0 {
		t.Errorf("expected no request body, got length %d", gotLength)
	}
}

func TestDo_NonSuccessStatusIsAPIError(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{http.StatusBadRequest, `{"err":"Task name invalid","ECODE":"INPUT_005"}`},
		{http.StatusUnauthorized, `{"err":"Token invalid","ECODE":"OAUTH_025"}`},
		{http.StatusNotFound, `not json at all`},
		{http.StatusTooManyRequests, ``},
		{http.StatusInternalServerError, `<html>oops</html>`},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			io.WriteString(w, tc.body)
		}))
		_, err := newExecutor(t, srv, "k").Do(context.Background(), api.Request{Method: http.MethodDelete, Path: "/api/v2/task/x1"})
		srv.Close()

		var apiErr *api.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *APIError, got %T (%v)", tc.status, err, err)
		}
		if apiErr.StatusCode != tc.status {
			t.Errorf("expected status %d, got %d", tc.status, apiErr.StatusCode)
		}
		if apiErr.Body != tc.body {
			t.Errorf("expected body %q, got %q", tc.body, apiErr.Body)
		}
		if api.Kind(err) != api.KindAPI {
			t.Errorf("expected KindAPI, got %v", api.Kind(err))
		}
	}
}

func TestDo_Timeout(t *testing.T) {
	aborted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			close(aborted)
		case <-time.After(5 * time.Second):
			io.WriteString(w, `{"late":true}`)
		}
	}))
	defer srv.Close()

	got, err := newExecutor(t, srv, "k").Do(context.Background(), api.Request{
		Method:  http.MethodGet,
		Path:    "/api/v2/task/slow",
		Timeout: 50 * time.Millisecond,
	})

	var timeoutErr *api.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T (%v)", err, err)
	}
	if timeoutErr.Timeout != 50*time.Millisecond {
		t.Errorf("expected timeout 50ms, got %v", timeoutErr.Timeout)
	}
	if got != nil {
		t.Errorf("expected no value with timeout, got %s", got)
	}
	if err.Error() != "request timeout after 50ms" {
		t.Errorf("unexpected message %q", err.Error())
	}

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Error("expected in-flight request to be aborted")
	}
}

func TestDo_ParseErrorOnInvalidSuccessBody(t *testing.T) {
	for _, body := range []string{"", "   ", "ok", `{"id":`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		}))
		_, err := newExecutor(t, srv, "k").Do(context.Background(), api.Request{Method: http.MethodDelete, Path: "/api/v2/task/x1"})
		srv.Close()

		var parseErr *api.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("body %q: expected *ParseError, got %T (%v)", body, err, err)
		}
		if parseErr.Body != body {
			t.Errorf("expected raw body %q, got %q", body, parseErr.Body)
		}
		if parseErr.Reason == "" {
			t.Error("expected a parse reason")
		}
	}
}

func TestDo_AllowEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	exec := api.New(api.Config{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client(), AllowEmptyBody: true})
	got, err := exec.Do(context.Background(), api.Request{Method: http.MethodDelete, Path: "/api/v2/task/x1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "null" {
		t.Errorf("expected null, got %s", got)
	}
}

func TestDo_MissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := newExecutor(t, srv, "").Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/api/v2/team"})

	var cfgErr *api.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network I/O, got %d requests", hits.Load())
	}
}

func TestDo_RejectsBadDescriptor(t *testing.T) {
	exec := api.New(api.Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	for _, req := range []api.Request{
		{Method: http.MethodPatch, Path: "/api/v2/task/x"},
		{Method: http.MethodGet, Path: "/v1/task/x"},
		{Method: http.MethodPost, Path: "/api/v2/task/x", Body: make(chan int)},
	} {
		if _, err := exec.Do(context.Background(), req); api.Kind(err) != api.KindConfig {
			t.Errorf("%s %s: expected config error, got %v", req.Method, req.Path, err)
		}
	}
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	exec := api.New(api.Config{APIKey: "k", BaseURL: url})
	_, err := exec.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/api/v2/team"})

	var transportErr *api.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T (%v)", err, err)
	}
	if transportErr.Unwrap() == nil {
		t.Error("expected underlying cause")
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want api.ErrorKind
	}{
		{nil, api.KindNone},
		{&api.ConfigError{Msg: "x"}, api.KindConfig},
		{&api.APIError{StatusCode: 500}, api.KindAPI},
		{&api.TimeoutError{Timeout: time.Second}, api.KindTimeout},
		{&api.TransportError{Err: io.EOF}, api.KindTransport},
		{&api.ParseError{Reason: "x"}, api.KindParse},
		{errors.New("other"), api.KindOther},
	}
	for _, tc := range cases {
		if got := api.Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
