package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// headerAPIKey carries the token on authenticated requests.
const headerAPIKey = "X-API-KEY"

// Client wraps HTTP calls to the kinocat server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new kinocat API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken sets the token sent with every request.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// WithTimeout replaces the request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

func (c *Client) do(req *http.Request, result any) error {
	if c.token != "" {
		req.Header.Set(headerAPIKey, c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			apiErr.Code = e.Code
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) get(path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) send(method, path string, body, result any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// IsUnauthorized reports whether err is a 401 or 403 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// API response types (mirror server types)

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Films    int    `json:"films"`
}

type ActorResponse struct {
	UUID     string  `json:"uuid"`
	Name     string  `json:"name"`
	Birthday *string `json:"birthday"`
	IsActive bool    `json:"is_active"`
}

type FilmResponse struct {
	UUID          string          `json:"uuid"`
	Title         string          `json:"title"`
	ReleaseDate   string          `json:"release_date"`
	Description   string          `json:"description"`
	DistributedBy string          `json:"distributed_by"`
	Length        int             `json:"length"`
	Rating        float64         `json:"rating"`
	Actors        []ActorResponse `json:"actors"`
}

type ListFilmsResponse struct {
	Items  []FilmResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type FilmMatch struct {
	Film  FilmResponse `json:"film"`
	Score float64      `json:"score"`
}

type SearchFilmsResponse struct {
	Query string      `json:"query"`
	Items []FilmMatch `json:"items"`
}

type ListActorsResponse struct {
	Items  []ActorResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type UserResponse struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PopulateFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type PopulateResponse struct {
	Message        string            `json:"message"`
	Strategy       string            `json:"strategy"`
	Found          int               `json:"found"`
	Created        int               `json:"created"`
	Failed         []PopulateFailure `json:"failed"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt string          `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// Status returns the server health summary.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges basic auth credentials for a token.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/v1/login", nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.SetBasicAuth(username, password)
	var resp LoginResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user account.
func (c *Client) Register(username, email, password string) (*UserResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var resp UserResponse
	if err := c.send(http.MethodPost, "/api/v1/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFilms returns one page of films matching query.
func (c *Client) ListFilms(query url.Values) (*ListFilmsResponse, error) {
	var resp ListFilmsResponse
	if err := c.get("/api/v1/films", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFilm returns a single film with its cast.
func (c *Client) GetFilm(id string) (*FilmResponse, error) {
	var resp FilmResponse
	if err := c.get("/api/v1/films/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchFilms runs a fuzzy title search.
func (c *Client) SearchFilms(q string, limit int) (*SearchFilmsResponse, error) {
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var resp SearchFilmsResponse
	if err := c.get("/api/v1/films/search", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFilm removes a film. Requires an admin token.
func (c *Client) DeleteFilm(id string) error {
	return c.send(http.MethodDelete, "/api/v1/films/"+url.PathEscape(id), nil, nil)
}

// ListActors returns one page of actors matching query.
func (c *Client) ListActors(query url.Values) (*ListActorsResponse, error) {
	var resp ListActorsResponse
	if err := c.get("/api/v1/actors", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActorFilms lists the films an actor appears in.
func (c *Client) ActorFilms(id string) (*ListFilmsResponse, error) {
	var resp ListFilmsResponse
	if err := c.get("/api/v1/actors/"+url.PathEscape(id)+"/films", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Populate scrapes the listing with strategy and stores new films.
// Requires an admin token.
func (c *Client) Populate(strategy string) (*PopulateResponse, error) {
	var resp PopulateResponse
	if err := c.get("/api/v1/populate/"+url.PathEscape(strategy), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events returns recent event log entries, newest first.
func (c *Client) Events(eventType string, limit int) (*ListEventsResponse, error) {
	query := url.Values{}
	if eventType != "" {
		query.Set("type", eventType)
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var resp ListEventsResponse
	if err := c.get("/api/v1/events", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
