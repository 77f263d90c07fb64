package trackingtime_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gpc/timesheets/internal/model"
	"github.com/gpc/timesheets/internal/trackingtime"
)

const testAccountID = 243645

// newTestServer serves canned API responses and records mark-billed calls.
// Every handler checks Basic auth first.
func newTestServer(t *testing.T, marked *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	withAuth := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "alice" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("/users", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": 1, "account_id": 999},
			{"id": 7, "account_id": 243645}
		]}`))
	}))
	mux.HandleFunc("/243645/customers", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": 3, "name": "Acme Corp"},
			{"id": 4, "name": "Globex"}
		]}`))
	}))
	mux.HandleFunc("/243645/events", withAuth(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("filter") != "USER" || q.Get("id") != "7" {
			t.Errorf("events query = %q, want filter=USER&id=7", r.URL.RawQuery)
		}
		if q.Get("from") == "" || q.Get("to") == "" {
			t.Error("events query missing from/to dates")
		}
		w.Write([]byte(`{"data": [
			{"id": 100, "user_id": 7, "customer_id": 3, "project": "Alpha", "task": "Design", "task_id": 11,
			 "start": "2024-01-01 09:00:00", "end": "2024-01-01 10:00:00", "hourly_rate": 100, "is_billed": false},
			{"id": 101, "user_id": 7, "customer_id": 3, "project": "Alpha", "task": "Design", "task_id": 11,
			 "start": "2024-01-01 10:00:00", "end": "2024-01-01 10:30:00", "hourly_rate": 100, "is_billed": true},
			{"id": 102, "user_id": 7, "customer_id": 4, "project": "Other", "task": null, "task_id": -1,
			 "start": "2024-01-01 11:00:00", "end": "2024-01-01 12:00:00", "hourly_rate": null, "is_billed": false},
			{"id": 103, "user_id": 8, "customer_id": 3, "project": "Alpha", "task": null, "task_id": -1,
			 "start": "2024-01-01 13:00:00", "end": "2024-01-01 14:00:00", "hourly_rate": null, "is_billed": false}
		]}`))
	}))
	mux.HandleFunc("/243645/events/update/", withAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("update method = %s, want POST", r.Method)
		}
		if r.URL.Query().Get("is_billed") != "true" {
			t.Errorf("update query = %q, want is_billed=true", r.URL.RawQuery)
		}
		*marked = append(*marked, r.URL.Path)
		w.Write([]byte(`{"data": []}`))
	}))

	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *trackingtime.Client {
	return trackingtime.NewClient(srv.URL, testAccountID, "alice", "secret")
}

func TestAuthenticateUser(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()

	user, err := newTestClient(srv).AuthenticateUser(context.Background(), testAccountID)
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
}

func TestAuthenticateUserNotFound(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()

	_, err := newTestClient(srv).AuthenticateUser(context.Background(), 555)
	var nfe *trackingtime.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("error = %T (%v), want *NotFoundError", err, err)
	}
	if nfe.Kind != "user" {
		t.Errorf("Kind = %q, want %q", nfe.Kind, "user")
	}
}

func TestCustomerLookups(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()
	client := newTestClient(srv)
	ctx := context.Background()

	byName, err := client.CustomerByName(ctx, "Acme Corp")
	if err != nil {
		t.Fatalf("CustomerByName: %v", err)
	}
	if byName.ID != 3 {
		t.Errorf("byName.ID = %d, want 3", byName.ID)
	}

	byID, err := client.CustomerByID(ctx, 4)
	if err != nil {
		t.Fatalf("CustomerByID: %v", err)
	}
	if byID.Name != "Globex" {
		t.Errorf("byID.Name = %q, want %q", byID.Name, "Globex")
	}

	_, err = client.CustomerByName(ctx, "acme corp")
	var nfe *trackingtime.NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError for case-mismatched name, got %T (%v)", err, err)
	}
}

func TestUnbilledEventsFiltering(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	events, err := newTestClient(srv).UnbilledEvents(context.Background(), 3, 7, from, to)
	if err != nil {
		t.Fatalf("UnbilledEvents: %v", err)
	}

	// Of the four served events only one matches user 7, customer 3 and
	// is not yet billed.
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].ID != 100 {
		t.Errorf("events[0].ID = %d, want 100", events[0].ID)
	}
}

func TestMarkEventBilled(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()

	if err := newTestClient(srv).MarkEventBilled(context.Background(), 100); err != nil {
		t.Fatalf("MarkEventBilled: %v", err)
	}
	if len(marked) != 1 || marked[0] != "/243645/events/update/100" {
		t.Errorf("marked = %v, want one call to /243645/events/update/100", marked)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Customers(context.Background())
	var terr *trackingtime.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T (%v), want *TransportError", err, err)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", terr.Status)
	}
	if terr.Body != "boom" {
		t.Errorf("Body = %q, want %q", terr.Body, "boom")
	}
}

func TestBadCredentials(t *testing.T) {
	var marked []string
	srv := newTestServer(t, &marked)
	defer srv.Close()

	client := trackingtime.NewClient(srv.URL, testAccountID, "alice", "wrong")
	_, err := client.AuthenticateUser(context.Background(), testAccountID)
	var terr *trackingtime.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T (%v), want *TransportError", err, err)
	}
	if terr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", terr.Status)
	}
}

func TestMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": "not an array"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Customers(context.Background())
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T (%v), want *model.ValidationError", err, err)
	}
}
