// Package client is a Go SDK for the dashboard REST API.
//
// The client keeps the logged-in session in a SessionStore and sends its token on every call.
// Every call takes a context: cancel it to abort the request.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/dashboard"
	"github.com/trezcool/dashboard/core/layout"
	"github.com/trezcool/dashboard/core/user"
)

const apiPrefix = "/v1"

type Client struct {
	baseURL string
	http    *rest.Client
	session *SessionStore
}

type Option func(*Client)

// WithHTTPClient sets the http.Client used to reach the API.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = &rest.Client{HTTPClient: hc} }
}

// New returns a Client of the API at baseURL, e.g. http://localhost:8000.
func New(baseURL string, session *SessionStore, opts ...Option) *Client {
	if session == nil {
		session = NewSessionStore("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: 30 * time.Second}},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *SessionStore { return c.session }

// send calls the API; a non-2xx status is returned as an *APIError or a *DependencyError.
func (c *Client) send(ctx context.Context, method rest.Method, path string, query url.Values, body interface{}) (*rest.Response, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + apiPrefix + path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if len(query) > 0 {
		req.BaseURL += "?" + query.Encode()
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
	}
	if sess, ok := c.session.Get(); ok {
		req.Headers["Authorization"] = "Bearer " + sess.Token
	}

	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(res.StatusCode, res.Body)
	}
	return res, nil
}

// call sends a request and decodes the JSON answer into T.
func call[T any](ctx context.Context, c *Client, method rest.Method, path string, query url.Values, body interface{}) (T, error) {
	var out T
	res, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return out, err
	}
	if err = json.Unmarshal([]byte(res.Body), &out); err != nil {
		return out, errors.Wrapf(err, "decoding %s %s", method, path)
	}
	return out, nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.send(ctx, rest.Delete, path, nil, nil)
	return err
}

// Auth

type loginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Login authenticates and stores the new session.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	body := map[string]string{"username": username, "password": password}
	res, err := call[loginResponse](ctx, c, rest.Post, "/users/login", nil, body)
	if err != nil {
		return Session{}, err
	}
	return c.startSession(res)
}

// RefreshToken swaps the session token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (Session, error) {
	if _, ok := c.session.Get(); !ok {
		return Session{}, ErrNoSession
	}
	res, err := call[loginResponse](ctx, c, rest.Post, "/users/token-refresh", nil, nil)
	if err != nil {
		return Session{}, err
	}
	return c.startSession(res)
}

func (c *Client) startSession(res loginResponse) (Session, error) {
	sess := Session{Token: res.Token, User: res.User}
	if err := c.session.Init(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Logout forgets the session.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	return call[user.User](ctx, c, rest.Get, "/users/me", nil, nil)
}

// Users (admin)

func (c *Client) ListUsers(ctx context.Context, query url.Values) ([]user.User, error) {
	return call[[]user.User](ctx, c, rest.Get, "/users", query, nil)
}

func (c *Client) CreateUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	return call[user.User](ctx, c, rest.Post, "/users", nil, nu)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/users/"+url.PathEscape(id))
}

// Events

func (c *Client) ListEvents(ctx context.Context, query url.Values) ([]calendar.Event, error) {
	return call[[]calendar.Event](ctx, c, rest.Get, "/events", query, nil)
}

func (c *Client) CreateEvent(ctx context.Context, ne calendar.NewEvent) (calendar.Event, error) {
	return call[calendar.Event](ctx, c, rest.Post, "/events", nil, ne)
}

func (c *Client) GetEvent(ctx context.Context, id string) (calendar.Event, error) {
	return call[calendar.Event](ctx, c, rest.Get, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpdateEvent(ctx context.Context, id string, ue calendar.UpdateEvent) (calendar.Event, error) {
	return call[calendar.Event](ctx, c, rest.Put, "/events/"+url.PathEscape(id), nil, ue)
}

func (c *Client) UpdateAttendance(ctx context.Context, id string, au calendar.AttendanceUpdate) (calendar.Event, error) {
	return call[calendar.Event](ctx, c, rest.Put, "/events/"+url.PathEscape(id)+"/attendance", nil, au)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.delete(ctx, "/events/"+url.PathEscape(id))
}

// ExportEvents returns the iCalendar document of the events matching query.
func (c *Client) ExportEvents(ctx context.Context, query url.Values) ([]byte, error) {
	res, err := c.send(ctx, rest.Get, "/events/export.ics", query, nil)
	if err != nil {
		return nil, err
	}
	return []byte(res.Body), nil
}

// Calendar views

func (c *Client) Day(ctx context.Context, date time.Time) (calendar.View[layout.DayView], error) {
	query := url.Values{"date": {date.Format("2006-01-02")}}
	return call[calendar.View[layout.DayView]](ctx, c, rest.Get, "/calendar/day", query, nil)
}

func (c *Client) Week(ctx context.Context, date time.Time) (calendar.View[layout.WeekView], error) {
	query := url.Values{"date": {date.Format("2006-01-02")}}
	return call[calendar.View[layout.WeekView]](ctx, c, rest.Get, "/calendar/week", query, nil)
}

// Month returns the month view; showAdjacent overrides the server default when set.
func (c *Client) Month(ctx context.Context, month time.Time, showAdjacent *bool) (calendar.View[layout.MonthView], error) {
	query := url.Values{"month": {month.Format("2006-01")}}
	if showAdjacent != nil {
		if *showAdjacent {
			query.Set("show_adjacent", "true")
		} else {
			query.Set("show_adjacent", "false")
		}
	}
	return call[calendar.View[layout.MonthView]](ctx, c, rest.Get, "/calendar/month", query, nil)
}

// Business entities

func (c *Client) ListEntities(ctx context.Context, query url.Values) ([]business.Entity, error) {
	return call[[]business.Entity](ctx, c, rest.Get, "/business/entities", query, nil)
}

func (c *Client) CreateEntity(ctx context.Context, ne business.NewEntity) (business.Entity, error) {
	return call[business.Entity](ctx, c, rest.Post, "/business/entities", nil, ne)
}

func (c *Client) GetEntity(ctx context.Context, id string) (business.Entity, error) {
	return call[business.Entity](ctx, c, rest.Get, "/business/entities/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpdateEntity(ctx context.Context, id string, ue business.UpdateEntity) (business.Entity, error) {
	return call[business.Entity](ctx, c, rest.Put, "/business/entities/"+url.PathEscape(id), nil, ue)
}

// DeleteEntity returns a *DependencyError when payment milestones still refer to the entity.
func (c *Client) DeleteEntity(ctx context.Context, id string) error {
	return c.delete(ctx, "/business/entities/"+url.PathEscape(id))
}

// Payment milestones

// ListMilestones lists the milestones of entityID, or of every entity when entityID is empty.
func (c *Client) ListMilestones(ctx context.Context, entityID string, query url.Values) ([]business.PaymentMilestone, error) {
	path := "/business/milestones"
	if entityID != "" {
		path = "/business/entities/" + url.PathEscape(entityID) + "/milestones"
	}
	return call[[]business.PaymentMilestone](ctx, c, rest.Get, path, query, nil)
}

func (c *Client) CreateMilestone(ctx context.Context, entityID string, nm business.NewMilestone) (business.PaymentMilestone, error) {
	path := "/business/entities/" + url.PathEscape(entityID) + "/milestones"
	return call[business.PaymentMilestone](ctx, c, rest.Post, path, nil, nm)
}

func (c *Client) UpdateMilestone(ctx context.Context, id string, um business.UpdateMilestone) (business.PaymentMilestone, error) {
	return call[business.PaymentMilestone](ctx, c, rest.Put, "/business/milestones/"+url.PathEscape(id), nil, um)
}

func (c *Client) DeleteMilestone(ctx context.Context, id string) error {
	return c.delete(ctx, "/business/milestones/"+url.PathEscape(id))
}

// Dashboards

// Finance returns the finance dashboard of fiscal year fy (e.g. "2024-25"), or of all time when fy is empty.
func (c *Client) Finance(ctx context.Context, fy string) (dashboard.Finance, error) {
	var query url.Values
	if fy != "" {
		query = url.Values{"fy": {fy}}
	}
	return call[dashboard.Finance](ctx, c, rest.Get, "/dashboard/finance", query, nil)
}
