// Package trackingtime provides a thin TrackingTime v4 API client that only
// fetches the information needed to build and bill a timesheet.
package trackingtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/gpc/timesheets/internal/model"
)

// Client is an authenticated TrackingTime API client. All requests use HTTP
// Basic authentication with the configured credentials.
type Client struct {
	baseURL    string
	accountID  int64
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL and account.
func NewClient(baseURL string, accountID int64, username, password string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/") + "/",
		accountID: accountID,
		username:  username,
		password:  password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// accountPath prefixes an endpoint with the account ID, as the API requires
// for customer and event resources.
func (c *Client) accountPath(endpoint string) string {
	return fmt.Sprintf("%d/%s", c.accountID, endpoint)
}

// do issues a request against the API and decodes the JSON body into out
// (unless out is nil). Non-2xx responses become a TransportError; bodies that
// do not match the expected shape become a ValidationError.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trackingtime request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return &model.ValidationError{Reason: fmt.Sprintf("unexpected response shape from %s: %v", endpoint, err)}
	}
	return nil
}

// The API wraps every listing in a top-level data array.
type usersEnvelope struct {
	Data []model.User `json:"data"`
}

type customersEnvelope struct {
	Data []model.Customer `json:"data"`
}

type eventsEnvelope struct {
	Data []model.TimeEvent `json:"data"`
}

// AuthenticateUser fetches all users and returns the one belonging to the
// given account.
func (c *Client) AuthenticateUser(ctx context.Context, accountID int64) (model.User, error) {
	var env usersEnvelope
	if err := c.do(ctx, http.MethodGet, "users", nil, &env); err != nil {
		return model.User{}, err
	}
	for _, user := range env.Data {
		if user.AccountID == accountID {
			return user, nil
		}
	}
	return model.User{}, &NotFoundError{Kind: "user", Key: strconv.FormatInt(accountID, 10)}
}

// Customers fetches all customers on the account.
func (c *Client) Customers(ctx context.Context) ([]model.Customer, error) {
	var env customersEnvelope
	if err := c.do(ctx, http.MethodGet, c.accountPath("customers"), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CustomerByName returns the customer with exactly the given name.
func (c *Client) CustomerByName(ctx context.Context, name string) (model.Customer, error) {
	customers, err := c.Customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}
	for _, customer := range customers {
		if customer.Name == name {
			return customer, nil
		}
	}
	return model.Customer{}, &NotFoundError{Kind: "customer", Key: name}
}

// CustomerByID returns the customer with the given ID.
func (c *Client) CustomerByID(ctx context.Context, id int64) (model.Customer, error) {
	customers, err := c.Customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}
	for _, customer := range customers {
		if customer.ID == id {
			return customer, nil
		}
	}
	return model.Customer{}, &NotFoundError{Kind: "customer", Key: strconv.FormatInt(id, 10)}
}

// UnbilledEvents fetches the user's events in [from, to] and filters them to
// the given customer, dropping events already marked billed. The filtering
// happens client-side; the API only narrows by user and date range.
// Calling it again re-fetches from the service.
func (c *Client) UnbilledEvents(ctx context.Context, customerID, userID int64, from, to time.Time) ([]model.TimeEvent, error) {
	params := url.Values{}
	params.Set("filter", "USER")
	params.Set("id", strconv.FormatInt(userID, 10))
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var env eventsEnvelope
	if err := c.do(ctx, http.MethodGet, c.accountPath("events"), params, &env); err != nil {
		return nil, err
	}

	var events []model.TimeEvent
	for _, event := range env.Data {
		if event.UserID == userID && event.CustomerID == customerID && !event.IsBilled {
			events = append(events, event)
		}
	}
	return events, nil
}

// MarkEventBilled flags a single event as billed on the remote service.
func (c *Client) MarkEventBilled(ctx context.Context, eventID int64) error {
	params := url.Values{}
	params.Set("is_billed", "true")
	endpoint := c.accountPath(fmt.Sprintf("events/update/%d", eventID))
	return c.do(ctx, http.MethodPost, endpoint, params, nil)
}
