package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/models"
)

// User action identifiers for the actions endpoint
const (
	ActionEnable       = "enable"
	ActionDisable      = "disable"
	ActionResetTraffic = "reset-traffic"
)

// Client is the panel REST API client. Every call is a single attempt with
// a fixed deadline; there are no retries or backoff.
type Client struct {
	httpClient *resty.Client
	logger     *logrus.Logger
}

// NewClient creates a new panel API client
func NewClient(cfg config.PanelConfig, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(constants.PanelRequestTimeout * time.Second).
		SetHeader("Authorization", "Bearer "+cfg.APIToken).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Do performs one authenticated call and normalizes the outcome: the raw
// JSON body on 2xx (an empty object for 204), ErrNotFound on 404, HTTPError
// with the server-provided detail on other statuses and TransportError on
// network or parse failure.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload any, params map[string]string) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx)
	if payload != nil {
		req.SetBody(payload)
	}
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		c.logger.Errorf("Panel request failed: %s %s: %v", method, endpoint, err)
		return nil, &TransportError{Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusNoContent:
		return json.RawMessage(`{}`), nil
	case status >= 200 && status < 300:
		return resp.Body(), nil
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		detail := string(resp.Body())
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
			detail = body.Message
		}
		c.logger.Errorf("Panel HTTP error: %s %s: status %d: %s", method, endpoint, status, detail)
		return nil, &HTTPError{Status: status, Detail: detail}
	}
}

// decodeResponse unwraps the panel's {"response": ...} envelope
func decodeResponse(body json.RawMessage, out any) error {
	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &TransportError{Err: err}
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

type usersPage struct {
	Users []models.User `json:"users"`
}

// GetUsersPage fetches one page of users
func (c *Client) GetUsersPage(ctx context.Context, start, size int) ([]models.User, error) {
	params := map[string]string{
		"start": fmt.Sprintf("%d", start),
		"size":  fmt.Sprintf("%d", size),
	}
	body, err := c.Do(ctx, http.MethodGet, "/api/users", nil, params)
	if err != nil {
		return nil, err
	}

	var page usersPage
	if err := decodeResponse(body, &page); err != nil {
		return nil, err
	}
	return page.Users, nil
}

// GetAllUsers fetches the full user listing by walking fixed-size pages
// until an underfull or empty page signals the end of data. The first page
// error is surfaced immediately, discarding any partial accumulation.
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var all []models.User
	start := 0
	size := constants.UsersPageSize

	for {
		users, err := c.GetUsersPage(ctx, start, size)
		if err != nil {
			c.logger.Errorf("Error fetching users with start=%d: %v", start, err)
			return nil, err
		}
		if len(users) == 0 {
			break
		}

		all = append(all, users...)
		if len(users) < size {
			break
		}
		start += size
	}

	return all, nil
}

// GetUserByUsername fetches a single user record
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	body, err := c.Do(ctx, http.MethodGet, "/api/users/by-username/"+username, nil, nil)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := decodeResponse(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserRequest is the POST /api/users payload
type CreateUserRequest struct {
	Username             string   `json:"username"`
	Status               string   `json:"status"`
	TrojanPassword       string   `json:"trojanPassword"`
	VlessUUID            string   `json:"vlessUuid"`
	SsPassword           string   `json:"ssPassword"`
	TrafficLimitBytes    int64    `json:"trafficLimitBytes"`
	TrafficLimitStrategy string   `json:"trafficLimitStrategy"`
	ExpireAt             string   `json:"expireAt"`
	Description          string   `json:"description"`
	Tag                  string   `json:"tag"`
	Email                string   `json:"email"`
	TelegramID           int64    `json:"telegramId"`
	HwidDeviceLimit      int      `json:"hwidDeviceLimit"`
	ActiveInternalSquads []string `json:"activeInternalSquads"`
}

// CreateUser creates a new panel user and returns the created record
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	body, err := c.Do(ctx, http.MethodPost, "/api/users", req, nil)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := decodeResponse(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPatch is the PATCH /api/users payload: the target uuid plus only the
// fields being changed.
type UserPatch struct {
	UUID              string  `json:"uuid"`
	TrafficLimitBytes *int64  `json:"trafficLimitBytes,omitempty"`
	ExpireAt          *string `json:"expireAt,omitempty"`
	HwidDeviceLimit   *int    `json:"hwidDeviceLimit,omitempty"`
}

// UpdateUser applies a partial update to a user
func (c *Client) UpdateUser(ctx context.Context, patch UserPatch) error {
	_, err := c.Do(ctx, http.MethodPatch, "/api/users", patch, nil)
	return err
}

// DeleteUser removes a user by uuid
func (c *Client) DeleteUser(ctx context.Context, uuid string) error {
	_, err := c.Do(ctx, http.MethodDelete, "/api/users/"+uuid, nil, nil)
	return err
}

// UserAction performs enable/disable/reset-traffic on a user
func (c *Client) UserAction(ctx context.Context, uuid, action string) error {
	_, err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%s/actions/%s", uuid, action), nil, nil)
	return err
}

type squadsResponse struct {
	InternalSquads []models.Squad `json:"internalSquads"`
}

// GetInternalSquads lists the panel's internal squads
func (c *Client) GetInternalSquads(ctx context.Context) ([]models.Squad, error) {
	body, err := c.Do(ctx, http.MethodGet, "/api/internal-squads", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp squadsResponse
	if err := decodeResponse(body, &resp); err != nil {
		return nil, err
	}
	return resp.InternalSquads, nil
}

// Subscription is a user's subscription info
type Subscription struct {
	SubscriptionURL string   `json:"subscriptionUrl"`
	Links           []string `json:"links"`
}

// GetSubscription fetches a user's subscription links
func (c *Client) GetSubscription(ctx context.Context, username string) (*Subscription, error) {
	body, err := c.Do(ctx, http.MethodGet, "/api/subscriptions/by-username/"+username, nil, nil)
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := decodeResponse(body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

type encryptResponse struct {
	EncryptedLink string `json:"encryptedLink"`
}

// EncryptHappLink converts a subscription link into its encrypted Happ form
func (c *Client) EncryptHappLink(ctx context.Context, link string) (string, error) {
	payload := map[string]string{"linkToEncrypt": link}
	body, err := c.Do(ctx, http.MethodPost, "/api/system/tools/happ/encrypt", payload, nil)
	if err != nil {
		return "", err
	}

	var resp encryptResponse
	if err := decodeResponse(body, &resp); err != nil {
		return "", err
	}
	return resp.EncryptedLink, nil
}
