package pad

import (
	"context"
	"encoding/json"
	"errors"
	"fachschaft-protokolle/internal/config"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrDisabled is returned by the NullClient.
var ErrDisabled = errors.New("pad: not configured")

// APIError is a response of the Etherpad API with a nonzero code.
type APIError struct {
	Method  string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pad: %s failed with code %d: %s", e.Method, e.Code, e.Message)
}

// Client is the subset of the Etherpad HTTP API used for minutes.
type Client interface {
	GetLastEdited(ctx context.Context, padID string) (time.Time, error)
	GetText(ctx context.Context, padID string) (string, error)
	SetText(ctx context.Context, padID, text string) error
	CreateGroupIfNotExistsFor(ctx context.Context, groupMapper string) (string, error)
	CreateGroupPad(ctx context.Context, groupID, padName, text string) (string, error)
	CreateAuthorIfNotExistsFor(ctx context.Context, authorMapper, name string) (string, error)
	CreateSession(ctx context.Context, groupID, authorID string, validUntil time.Time) (string, error)
}

// PadID returns the id of a group pad.
func PadID(groupID, padName string) string {
	return groupID + "$" + padName
}

// New returns an EtherpadClient if a pad url is configured and a NullClient otherwise.
func New(c *config.Configuration) Client {
	if c.Pad.Url == nil || c.Pad.Url.URL == nil || len(c.Pad.ApiKey) == 0 {
		return &NullClient{}
	}
	return &EtherpadClient{
		BaseURL:    c.Pad.Url.URL,
		ApiKey:     c.Pad.ApiKey,
		ApiVersion: c.Pad.ApiVersion,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// EtherpadClient talks to the Etherpad HTTP API.
type EtherpadClient struct {
	BaseURL    *url.URL
	ApiKey     string
	ApiVersion string
	HTTPClient *http.Client
}

// ensure EtherpadClient implements Client
var _ Client = &EtherpadClient{}

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call posts params to /api/<version>/<method> and decodes the data field into out.
func (e *EtherpadClient) call(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := e.BaseURL.JoinPath("api", e.ApiVersion, method)

	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("apikey", e.ApiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("pad: calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pad: reading %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pad: %s returned HTTP %d: %s", method, resp.StatusCode, string(body))
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("pad: parsing %s response: %w", method, err)
	}
	if r.Code != 0 {
		return &APIError{Method: method, Code: r.Code, Message: r.Message}
	}
	if out == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("pad: parsing %s data: %w", method, err)
	}
	return nil
}

func (e *EtherpadClient) GetLastEdited(ctx context.Context, padID string) (time.Time, error) {
	var data struct {
		LastEdited int64 `json:"lastEdited"`
	}
	if err := e.call(ctx, "getLastEdited", url.Values{"padID": {padID}}, &data); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(data.LastEdited), nil
}

func (e *EtherpadClient) GetText(ctx context.Context, padID string) (string, error) {
	var data struct {
		Text string `json:"text"`
	}
	err := e.call(ctx, "getText", url.Values{"padID": {padID}}, &data)
	return data.Text, err
}

func (e *EtherpadClient) SetText(ctx context.Context, padID, text string) error {
	return e.call(ctx, "setText", url.Values{"padID": {padID}, "text": {text}}, nil)
}

func (e *EtherpadClient) CreateGroupIfNotExistsFor(ctx context.Context, groupMapper string) (string, error) {
	var data struct {
		GroupID string `json:"groupID"`
	}
	err := e.call(ctx, "createGroupIfNotExistsFor", url.Values{"groupMapper": {groupMapper}}, &data)
	return data.GroupID, err
}

// CreateGroupPad creates a pad inside a group. An already existing pad is
// not an error; its text is left unchanged.
func (e *EtherpadClient) CreateGroupPad(ctx context.Context, groupID, padName, text string) (string, error) {
	var data struct {
		PadID string `json:"padID"`
	}
	err := e.call(ctx, "createGroupPad", url.Values{"groupID": {groupID}, "padName": {padName}, "text": {text}}, &data)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "does already exist") {
		return PadID(groupID, padName), nil
	}
	if err != nil {
		return "", err
	}
	return data.PadID, nil
}

func (e *EtherpadClient) CreateAuthorIfNotExistsFor(ctx context.Context, authorMapper, name string) (string, error) {
	var data struct {
		AuthorID string `json:"authorID"`
	}
	err := e.call(ctx, "createAuthorIfNotExistsFor", url.Values{"authorMapper": {authorMapper}, "name": {name}}, &data)
	return data.AuthorID, err
}

func (e *EtherpadClient) CreateSession(ctx context.Context, groupID, authorID string, validUntil time.Time) (string, error) {
	var data struct {
		SessionID string `json:"sessionID"`
	}
	params := url.Values{
		"groupID":    {groupID},
		"authorID":   {authorID},
		"validUntil": {strconv.FormatInt(validUntil.Unix(), 10)},
	}
	err := e.call(ctx, "createSession", params, &data)
	return data.SessionID, err
}

// NullClient is used when no pad server is configured. Every call fails with ErrDisabled.
type NullClient struct{}

// ensure NullClient implements Client
var _ Client = &NullClient{}

func (n *NullClient) GetLastEdited(context.Context, string) (time.Time, error) {
	return time.Time{}, ErrDisabled
}

func (n *NullClient) GetText(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (n *NullClient) SetText(context.Context, string, string) error {
	return ErrDisabled
}

func (n *NullClient) CreateGroupIfNotExistsFor(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (n *NullClient) CreateGroupPad(context.Context, string, string, string) (string, error) {
	return "", ErrDisabled
}

func (n *NullClient) CreateAuthorIfNotExistsFor(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

func (n *NullClient) CreateSession(context.Context, string, string, time.Time) (string, error) {
	return "", ErrDisabled
}
