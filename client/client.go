// Package client is a typed Go client for the btnpop API. It wraps
// every public endpoint plus the authenticated admin calls behind one
// shared HTTP client with bearer-token injection and normalized errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/btnpop/btnpop-api/models"
)

// APIError is any non-2xx response, normalized to the status code and
// the server's message string.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		message := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			switch {
			case errBody.Message != "":
				message = errBody.Message
			case len(errBody.Errors) > 0:
				message = errBody.Errors[0]
			}
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ---------------- events ----------------

type EventList struct {
	Events      []models.Event `json:"events"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	TotalEvents int64          `json:"totalEvents"`
}

// EventFilter narrows ListEvents. Zero values mean "no filter".
type EventFilter struct {
	Page     int
	Limit    int
	Category string
	Upcoming bool
	Featured bool
	Search   string
}

func (f EventFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Upcoming {
		q.Set("upcoming", "true")
	}
	if f.Featured {
		q.Set("featured", "true")
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (c *Client) ListEvents(ctx context.Context, filter EventFilter) (*EventList, error) {
	var out EventList
	if err := c.do(ctx, http.MethodGet, "/api/events", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/upcoming", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent accepts an ObjectID hex or a slug.
func (c *Client) GetEvent(ctx context.Context, idOrSlug string) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(idOrSlug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PartitionEvents splits events into current, upcoming and past lists
// using the same day-granular classification the server persists.
func PartitionEvents(events []models.Event, now time.Time) (current, upcoming, past []models.Event) {
	for _, e := range events {
		switch models.Classify(e.EventDate, e.EndDate, now) {
		case models.EventCurrent:
			current = append(current, e)
		case models.EventUpcoming:
			upcoming = append(upcoming, e)
		default:
			past = append(past, e)
		}
	}
	return current, upcoming, past
}

// ---------------- participants ----------------

type Registration struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

type RegistrationResult struct {
	Message     string              `json:"message"`
	Participant *models.Participant `json:"participant"`
}

func (c *Client) Register(ctx context.Context, eventID string, reg Registration) (*RegistrationResult, error) {
	var out RegistrationResult
	path := "/api/participants/" + url.PathEscape(eventID) + "/register"
	if err := c.do(ctx, http.MethodPost, path, nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Verification struct {
	Participant models.Participant `json:"participant"`
	Event       *models.Event      `json:"event,omitempty"`
}

func (c *Client) VerifyRegistration(ctx context.Context, joinID string) (*Verification, error) {
	var out Verification
	if err := c.do(ctx, http.MethodGet, "/api/participants/verify/"+url.PathEscape(joinID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateParticipantStatus(ctx context.Context, participantID, status string) (*models.Participant, error) {
	var out models.Participant
	path := "/api/participants/" + url.PathEscape(participantID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, nil, map[string]string{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------- news ----------------

type NewsList struct {
	News        []models.News `json:"news"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	TotalNews   int64         `json:"totalNews"`
}

type NewsFilter struct {
	Page     int
	Limit    int
	Category string
	Featured bool
	Trending bool
	Search   string
}

func (f NewsFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Featured {
		q.Set("featured", "true")
	}
	if f.Trending {
		q.Set("trending", "true")
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (c *Client) ListNews(ctx context.Context, filter NewsFilter) (*NewsList, error) {
	var out NewsList
	if err := c.do(ctx, http.MethodGet, "/api/news", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetNews(ctx context.Context, idOrSlug string) (*models.News, error) {
	var out models.News
	if err := c.do(ctx, http.MethodGet, "/api/news/"+url.PathEscape(idOrSlug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LatestNews(ctx context.Context) ([]models.News, error) {
	var out []models.News
	if err := c.do(ctx, http.MethodGet, "/api/news/latest", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LikeNews votes on an article. previousAction is this browser's last
// recorded action ("liked", "disliked" or empty) and is passed through
// as a hint only.
func (c *Client) LikeNews(ctx context.Context, id, previousAction string) (*models.News, error) {
	return c.vote(ctx, id, "like", previousAction)
}

func (c *Client) DislikeNews(ctx context.Context, id, previousAction string) (*models.News, error) {
	return c.vote(ctx, id, "dislike", previousAction)
}

func (c *Client) vote(ctx context.Context, id, action, previousAction string) (*models.News, error) {
	var out models.News
	path := "/api/news/" + url.PathEscape(id) + "/" + action
	body := map[string]string{"previousAction": previousAction}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------- auth ----------------

type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}
