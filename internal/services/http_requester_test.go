package services

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"deskbridge/internal/testutils"
	"deskbridge/internal/types"
)

func strPtr(s string) *string { return &s }

// echoServer mirrors the request body back and counts hits
func echoServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRequester_RejectsBeforeNetwork(t *testing.T) {
	var hits int32
	srv := echoServer(t, &hits)
	requester := NewHTTPRequester(&testutils.RecordingLogger{})

	tests := []struct {
		name     string
		req      types.APIRequest
		wantKind RequestErrorKind
		wantMsg  string
	}{
		{
			name:     "unsupported method",
			req:      types.APIRequest{URL: srv.URL, Method: "PATCH"},
			wantKind: RequestErrMethod,
			wantMsg:  "unsupported HTTP method: PATCH",
		},
		{
			name:     "lowercase method",
			req:      types.APIRequest{URL: srv.URL, Method: "get"},
			wantKind: RequestErrMethod,
			wantMsg:  "unsupported HTTP method: get",
		},
		{
			name:     "unsupported proxy protocol",
			req:      types.APIRequest{URL: srv.URL, Method: "GET", Proxy: strPtr("ftp://x:1")},
			wantKind: RequestErrProxy,
			wantMsg:  "unsupported proxy protocol",
		},
		{
			name:     "unparseable proxy",
			req:      types.APIRequest{URL: srv.URL, Method: "GET", Proxy: strPtr("://nope")},
			wantKind: RequestErrProxy,
			wantMsg:  "failed to parse proxy URL",
		},
		{
			name:     "invalid body",
			req:      types.APIRequest{URL: srv.URL, Method: "POST", Body: json.RawMessage(`{"a":`)},
			wantKind: RequestErrBuild,
			wantMsg:  "request body is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := requester.Send(context.Background(), tt.req)
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %v", err)
			}
			if reqErr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", reqErr.Kind, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}

	if hits != 0 {
		t.Errorf("expected no network calls, got %d", hits)
	}
}

func TestHTTPRequester_EchoRoundTrip(t *testing.T) {
	var hits int32
	srv := echoServer(t, &hits)
	requester := NewHTTPRequester(&testutils.RecordingLogger{})

	got, err := requester.Send(context.Background(), types.APIRequest{
		URL:    srv.URL,
		Method: "GET",
		Body:   json.RawMessage(`{"a": 1}`),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	want := map[string]interface{}{"data": map[string]interface{}{"a": float64(1)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHTTPRequester_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{URL: srv.URL, Method: "POST", Body: json.RawMessage(`{"q":"hi"}`)})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != RequestErrStatus {
		t.Fatalf("expected status error, got %v", err)
	}
	if reqErr.Status != 500 {
		t.Errorf("status = %d, want 500", reqErr.Status)
	}
	msg := err.Error()
	if !strings.Contains(msg, "500") || !strings.Contains(msg, `{"error":"model overloaded"}`) {
		t.Errorf("message should embed status and body, got %q", msg)
	}
}

func TestHTTPRequester_ParseFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"plain text", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{URL: srv.URL, Method: "DELETE"})
			if err == nil || !strings.Contains(err.Error(), "response parse failed") {
				t.Errorf("expected parse failure, got %v", err)
			}
		})
	}
}

func TestHTTPRequester_Headers(t *testing.T) {
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	logger := &testutils.RecordingLogger{}
	got, err := NewHTTPRequester(logger).Send(context.Background(), types.APIRequest{
		URL:    srv.URL,
		Method: "PUT",
		Headers: map[string]string{
			"Authorization": "Bearer token",
			"Content-Type":  "application/merge-patch+json",
			"bad name":      "x",
			"X-Bad-Value":   "line\nbreak",
		},
		Body: json.RawMessage(`{"b":true}`),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if data, ok := got["data"].([]interface{}); !ok || len(data) != 0 {
		t.Errorf("expected empty array payload, got %v", got)
	}

	if seen.Get("Authorization") != "Bearer token" {
		t.Errorf("valid header missing: %v", seen)
	}
	if seen.Get("Content-Type") != "application/merge-patch+json" {
		t.Errorf("user Content-Type should override the JSON default, got %q", seen.Get("Content-Type"))
	}
	if seen.Get("X-Bad-Value") != "" {
		t.Error("invalid header value should be dropped")
	}
	if warns := logger.Calls("WARN"); len(warns) != 2 {
		t.Errorf("expected 2 dropped-header warnings, got %d", len(warns))
	}
}

func TestHTTPRequester_DefaultContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	if _, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{URL: srv.URL, Method: "POST", Body: json.RawMessage(`{"x":1}`)}); err != nil {
		t.Fatal(err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
}

func TestHTTPRequester_HTTPProxy(t *testing.T) {
	var proxied string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.String()
		_, _ = w.Write([]byte(`{"via":"proxy"}`))
	}))
	t.Cleanup(proxySrv.Close)

	got, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{
		URL:    "http://upstream.invalid/v1/models",
		Method: "GET",
		Proxy:  strPtr(proxySrv.URL),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if proxied != "http://upstream.invalid/v1/models" {
		t.Errorf("proxy saw %q", proxied)
	}
	if got["data"].(map[string]interface{})["via"] != "proxy" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestHTTPRequester_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{URL: url, Method: "GET"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != RequestErrTransport {
		t.Errorf("expected transport error, got %v", err)
	}
}

// socks5Server is a no-auth SOCKS5 CONNECT relay counting the tunnels it opens
func socks5Server(t *testing.T, tunnels *int32) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				target, err := socks5Handshake(conn)
				if err != nil {
					return
				}
				upstream, err := net.Dial("tcp", target)
				if err != nil {
					_, _ = conn.Write([]byte{5, 5, 0, 1, 0, 0, 0, 0, 0, 0})
					return
				}
				defer upstream.Close()
				atomic.AddInt32(tunnels, 1)
				if _, err := conn.Write([]byte{5, 0, 0, 1, 0, 0, 0, 0, 0, 0}); err != nil {
					return
				}
				go func() { _, _ = io.Copy(upstream, conn) }()
				_, _ = io.Copy(conn, upstream)
			}()
		}
	}()
	return ln.Addr().String()
}

// socks5Handshake accepts the no-auth method and returns the CONNECT target
func socks5Handshake(conn net.Conn) (string, error) {
	head := make([]byte, 2)
	if _, err := io.ReadFull(conn, head); err != nil {
		return "", err
	}
	if _, err := io.ReadFull(conn, make([]byte, head[1])); err != nil {
		return "", err
	}
	if _, err := conn.Write([]byte{5, 0}); err != nil {
		return "", err
	}

	req := make([]byte, 4)
	if _, err := io.ReadFull(conn, req); err != nil {
		return "", err
	}
	if req[1] != 1 {
		return "", errors.New("only CONNECT is supported")
	}

	var host string
	switch req[3] {
	case 1:
		ip := make([]byte, net.IPv4len)
		if _, err := io.ReadFull(conn, ip); err != nil {
			return "", err
		}
		host = net.IP(ip).String()
	case 3:
		n := make([]byte, 1)
		if _, err := io.ReadFull(conn, n); err != nil {
			return "", err
		}
		name := make([]byte, n[0])
		if _, err := io.ReadFull(conn, name); err != nil {
			return "", err
		}
		host = string(name)
	case 4:
		ip := make([]byte, net.IPv6len)
		if _, err := io.ReadFull(conn, ip); err != nil {
			return "", err
		}
		host = net.IP(ip).String()
	default:
		return "", errors.New("unknown address type")
	}

	port := make([]byte, 2)
	if _, err := io.ReadFull(conn, port); err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(int(binary.BigEndian.Uint16(port)))), nil
}

func TestHTTPRequester_SOCKS5Proxy(t *testing.T) {
	var hits, tunnels int32
	srv := echoServer(t, &hits)
	proxyAddr := socks5Server(t, &tunnels)

	got, err := NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{
		URL:    srv.URL,
		Method: "POST",
		Body:   json.RawMessage(`{"a":1}`),
		Proxy:  strPtr("socks5://" + proxyAddr),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	want := map[string]interface{}{"data": map[string]interface{}{"a": float64(1)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if n := atomic.LoadInt32(&tunnels); n != 1 {
		t.Errorf("expected one tunnel through the proxy, got %d", n)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected one upstream hit, got %d", n)
	}
}

func TestHTTPRequester_SOCKS5ProxyUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewHTTPRequester(nil).Send(context.Background(), types.APIRequest{
		URL:    "http://upstream.invalid/",
		Method: "GET",
		Proxy:  strPtr("socks5://" + addr),
	})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != RequestErrTransport {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestHTTPRequester_ConnectTimeout(t *testing.T) {
	requester := NewHTTPRequester(nil)
	if requester.connectTimeout != 5*time.Second {
		t.Fatalf("connect timeout = %v, want 5s", requester.connectTimeout)
	}

	var hits int32
	srv := echoServer(t, &hits)

	// an already expired dial deadline fails every connection attempt
	requester.connectTimeout = time.Nanosecond
	start := time.Now()
	_, err := requester.Send(context.Background(), types.APIRequest{URL: srv.URL, Method: "GET"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("dial was not bounded by the connect timeout, took %v", elapsed)
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != RequestErrTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected a timeout, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("no request should reach the server, got %d", n)
	}
}
