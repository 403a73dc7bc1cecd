package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestNewClient tests HTTP client creation.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client fetches", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok")) //nolint:errcheck
		}))
		defer server.Close()

		client, err := NewClient("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := client.Get(server.URL) //nolint:noctx // test code
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("stops after too many redirects", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer server.Close()

		client, err := NewClient("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := client.Get(server.URL) //nolint:noctx // test code
		if err != nil {
			t.Fatalf("expected the last redirect response, got error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected 302, got %d", resp.StatusCode)
		}
	})

	t.Run("accepts a valid proxy address", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:1080")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Transport == nil {
			t.Error("expected a transport")
		}
	})

	t.Run("rejects an invalid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient("localhost"); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:1080", true},
		{"127.0.0.1", false},
		{":1080", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()

			if got := isValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("isValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		str    string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		if tt.status.String() != tt.str {
			t.Errorf("expected %q, got %q", tt.str, tt.status.String())
		}
		if !errors.Is(tt.status.Error(), tt.err) {
			t.Errorf("%v: expected error %v, got %v", tt.status, tt.err, tt.status.Error())
		}
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("unexpected handling of unknown status")
	}
}

// serveOnce accepts one connection, reads the SOCKS5 greeting and writes reply.
func serveOnce(t *testing.T, reply []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(reply)
	}()
	return listener.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect for closed port", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := listener.Addr().String()
		listener.Close()

		if status := CheckProxy(context.Background(), addr); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for non-SOCKS5 server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte("HTTP/1.1 200 OK\r\n\r\n"))
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{0x05, 0xFF})
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for SOCKS5 without auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{0x05, 0x00})
		if status := CheckProxy(context.Background(), addr); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		if status := CheckProxy(context.Background(), "nope"); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})
}
