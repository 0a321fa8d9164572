// Package client talks to the event API on behalf of admin tooling.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ragul198/Event/internal/models"
)

// APIError is a non-2xx reply decoded from the response envelope.
type APIError struct {
	Status   int
	Code     string
	Message  string
	Redirect string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Redirect != "" {
		return fmt.Sprintf("%s (%d): %s, redirect to %s", e.Code, e.Status, msg, e.Redirect)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, msg)
}

// Meta mirrors the envelope metadata.
type Meta struct {
	State    string `json:"state"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Count    int    `json:"count"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta Meta `json:"meta"`
}

// Client is a thin bearer-token client for the admin endpoints.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New builds a client. base includes the API prefix, e.g. http://localhost:8080/api/v1.
func New(base, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), token: token, http: httpClient}
}

// Stats fetches per-event registration totals.
func (c *Client) Stats(ctx context.Context) ([]models.EventStats, error) {
	var stats []models.EventStats
	_, err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &stats)
	return stats, err
}

// Roster fetches the participants of one event.
func (c *Client) Roster(ctx context.Context, eventID string) (*Roster, error) {
	var roster models.Roster
	if _, err := c.do(ctx, http.MethodGet, "/admin/events/"+url.PathEscape(eventID)+"/registrations", nil, &roster); err != nil {
		return nil, err
	}
	return &Roster{Roster: roster}, nil
}

// DeleteRegistration removes a registration. Confirmation is sent explicitly.
func (c *Client) DeleteRegistration(ctx context.Context, registrationID string) error {
	q := url.Values{"confirm": {"true"}}
	_, err := c.do(ctx, http.MethodDelete, "/admin/registrations/"+url.PathEscape(registrationID), q, nil)
	return err
}

// RemoveFromRoster deletes a registration and drops it from the loaded roster without re-fetching.
func (c *Client) RemoveFromRoster(ctx context.Context, roster *Roster, registrationID string) error {
	if err := c.DeleteRegistration(ctx, registrationID); err != nil {
		return err
	}
	roster.Remove(registrationID)
	return nil
}

// Export asks the server to render a roster file.
func (c *Client) Export(ctx context.Context, eventID, format string) (*models.ExportFile, error) {
	var file models.ExportFile
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	if _, err := c.do(ctx, http.MethodPost, "/admin/events/"+url.PathEscape(eventID)+"/registrations/export", q, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Download streams a signed export link into w. link may be relative to the API origin.
func (c *Client) Download(ctx context.Context, link string, w io.Writer) (int64, error) {
	target, err := c.resolve(link)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download export: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) resolve(link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(c.base)
	if err != nil {
		return "", fmt.Errorf("parse base: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, dest interface{}) (Meta, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return Meta{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return Meta{}, decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return Meta{}, nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Meta{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if dest != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return env.Meta, fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return env.Meta, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return apiErr
	}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	apiErr.Redirect = env.Meta.Redirect
	return apiErr
}
