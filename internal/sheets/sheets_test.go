package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func clientFor(server *httptest.Server) *Client {
	c := NewClient()
	c.httpClient = server.Client()
	return c
}

func TestFetchCSVRequiresSheetID(t *testing.T) {
	if _, err := NewClient().FetchCSV(context.Background(), ""); !errors.Is(err, ErrSheetIDRequired) {
		t.Fatalf("err = %v, want ErrSheetIDRequired", err)
	}
}

func TestFetchCSVStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrSheetNotFound},
		{"forbidden", http.StatusForbidden, ErrSheetNotPublic},
		{"unauthorized", http.StatusUnauthorized, ErrSheetNotPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := clientFor(server)
			// Point the request at the test server instead of Google.
			c.httpClient.Transport = rewriteTransport{server.Listener.Addr().String()}
			if _, err := c.FetchCSV(context.Background(), "sheet-1"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchCSVReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Date,Description,Amount\n1/2/2024,Coffee,4.50\n"))
	}))
	defer server.Close()

	c := clientFor(server)
	c.httpClient.Transport = rewriteTransport{server.Listener.Addr().String()}
	body, err := c.FetchCSV(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("FetchCSV: %v", err)
	}
	if body != "Date,Description,Amount\n1/2/2024,Coffee,4.50\n" {
		t.Errorf("unexpected body %q", body)
	}
}

// rewriteTransport redirects every request to the test server over plain
// HTTP.
type rewriteTransport struct {
	addr string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.addr
	return http.DefaultTransport.RoundTrip(req)
}
