package pad_test

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/pad"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// newTestServer answers Etherpad API calls with the given per-method JSON bodies
// and records the form values of every request.
func newTestServer(t *testing.T, responses map[string]string, received map[string]url.Values) (*httptest.Server, *pad.EtherpadClient) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		var method string
		if _, err := fmt.Sscanf(r.URL.Path, "/api/1.2.13/%s", &method); err != nil {
			http.NotFound(w, r)
			return
		}
		received[method] = r.PostForm
		body, ok := responses[method]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	base, _ := url.Parse(server.URL)
	return server, &pad.EtherpadClient{BaseURL: base, ApiKey: "secret", ApiVersion: "1.2.13", HTTPClient: server.Client()}
}

func TestEtherpadClient(t *testing.T) {
	received := map[string]url.Values{}
	_, client := newTestServer(t, map[string]string{
		"getText":                    `{"code":0,"message":"ok","data":{"text":"Hallo Pad"}}`,
		"getLastEdited":              `{"code":0,"message":"ok","data":{"lastEdited":1709834400000}}`,
		"setText":                    `{"code":0,"message":"ok","data":null}`,
		"createGroupIfNotExistsFor":  `{"code":0,"message":"ok","data":{"groupID":"g.abc"}}`,
		"createGroupPad":             `{"code":1,"message":"padName does already exist","data":null}`,
		"createAuthorIfNotExistsFor": `{"code":0,"message":"ok","data":{"authorID":"a.xyz"}}`,
		"createSession":              `{"code":0,"message":"ok","data":{"sessionID":"s.123"}}`,
	}, received)
	ctx := context.Background()

	text, err := client.GetText(ctx, "g.abc$fsr")
	if err != nil || text != "Hallo Pad" {
		t.Errorf("GetText() = %q, %v", text, err)
	}
	if got := received["getText"]; got.Get("apikey") != "secret" || got.Get("padID") != "g.abc$fsr" {
		t.Errorf("unexpected getText parameters %v", got)
	}

	edited, err := client.GetLastEdited(ctx, "g.abc$fsr")
	if err != nil || !edited.Equal(time.UnixMilli(1709834400000)) {
		t.Errorf("GetLastEdited() = %v, %v", edited, err)
	}

	if err := client.SetText(ctx, "g.abc$fsr", "Neu"); err != nil {
		t.Errorf("SetText() failed: %v", err)
	}
	if received["setText"].Get("text") != "Neu" {
		t.Errorf("unexpected setText parameters %v", received["setText"])
	}

	group, err := client.CreateGroupIfNotExistsFor(ctx, "fsr")
	if err != nil || group != "g.abc" {
		t.Errorf("CreateGroupIfNotExistsFor() = %q, %v", group, err)
	}

	padID, err := client.CreateGroupPad(ctx, group, "fsr-2024-03-07", "Vorlage")
	if err != nil || padID != "g.abc$fsr-2024-03-07" {
		t.Errorf("CreateGroupPad() on existing pad = %q, %v", padID, err)
	}

	author, err := client.CreateAuthorIfNotExistsFor(ctx, "anna", "Anna")
	if err != nil || author != "a.xyz" {
		t.Errorf("CreateAuthorIfNotExistsFor() = %q, %v", author, err)
	}

	validUntil := time.Unix(1709900000, 0)
	session, err := client.CreateSession(ctx, group, author, validUntil)
	if err != nil || session != "s.123" {
		t.Errorf("CreateSession() = %q, %v", session, err)
	}
	if received["createSession"].Get("validUntil") != "1709900000" {
		t.Errorf("unexpected createSession parameters %v", received["createSession"])
	}
}

func TestEtherpadClientErrors(t *testing.T) {
	received := map[string]url.Values{}
	server, client := newTestServer(t, map[string]string{
		"getText":       `{"code":1,"message":"padID does not exist","data":null}`,
		"getLastEdited": `not json`,
	}, received)
	ctx := context.Background()

	_, err := client.GetText(ctx, "missing")
	var apiErr *pad.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 1 {
		t.Errorf("expected APIError, got %v", err)
	}

	if _, err := client.GetLastEdited(ctx, "x"); err == nil {
		t.Error("expected malformed response to fail")
	}

	if err := client.SetText(ctx, "x", "y"); err == nil {
		t.Error("expected HTTP 404 to fail")
	}

	server.Close()
	if _, err := client.GetText(ctx, "x"); err == nil {
		t.Error("expected connection failure")
	}
}

func TestNullClient(t *testing.T) {
	var c pad.Client = &pad.NullClient{}
	if _, err := c.GetText(context.Background(), "x"); !errors.Is(err, pad.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}
