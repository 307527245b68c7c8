package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/net/proxy"

	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/types"
)

// ConnectTimeout bounds establishing the TCP connection, proxy hop included
const ConnectTimeout = 5 * time.Second

// RequestErrorKind identifies which stage of an outbound request failed
type RequestErrorKind int

const (
	RequestErrProxy RequestErrorKind = iota
	RequestErrMethod
	RequestErrBuild
	RequestErrTransport
	RequestErrStatus
	RequestErrParse
)

// String returns the string representation of the kind
func (k RequestErrorKind) String() string {
	switch k {
	case RequestErrProxy:
		return "PROXY"
	case RequestErrMethod:
		return "METHOD"
	case RequestErrBuild:
		return "BUILD"
	case RequestErrTransport:
		return "TRANSPORT"
	case RequestErrStatus:
		return "STATUS"
	case RequestErrParse:
		return "PARSE"
	default:
		return "UNKNOWN"
	}
}

// RequestError is returned by HTTPRequester.Send
type RequestError struct {
	Kind   RequestErrorKind
	Msg    string
	Status int
	Err    error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindName returns the failure stage name used in log fields
func (e *RequestError) KindName() string {
	return e.Kind.String()
}

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// HTTPRequester issues JSON API requests for the UI, optionally through a proxy
type HTTPRequester struct {
	logger         logging.Logger
	connectTimeout time.Duration
}

// NewHTTPRequester creates a requester with the fixed connect timeout
func NewHTTPRequester(logger logging.Logger) *HTTPRequester {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &HTTPRequester{logger: logger, connectTimeout: ConnectTimeout}
}

// Send performs req and returns {"data": <parsed JSON body>}. Proxy and method
// problems are reported before any network I/O.
func (h *HTTPRequester) Send(ctx context.Context, req types.APIRequest) (map[string]interface{}, error) {
	client, err := h.newClient(req.ProxyURL())
	if err != nil {
		return nil, err
	}

	headers := h.buildHeaders(req.Headers)

	if !supportedMethods[req.Method] {
		return nil, &RequestError{Kind: RequestErrMethod, Msg: fmt.Sprintf("unsupported HTTP method: %s", req.Method)}
	}

	var body io.Reader
	if req.HasBody() {
		if !json.Valid(req.Body) {
			return nil, &RequestError{Kind: RequestErrBuild, Msg: "request body is not valid JSON"}
		}
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &RequestError{Kind: RequestErrBuild, Msg: "failed to build HTTP request", Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for name, values := range headers {
		httpReq.Header[name] = values
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Kind: RequestErrTransport, Msg: "failed to send HTTP request", Err: err}
	}
	defer resp.Body.Close()

	// a body that cannot be read is treated as empty
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Kind:   RequestErrStatus,
			Status: resp.StatusCode,
			Msg:    fmt.Sprintf("API request failed, status: %s, response: %s", resp.Status, text),
		}
	}

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &RequestError{
			Kind:   RequestErrParse,
			Status: resp.StatusCode,
			Msg:    fmt.Sprintf("response parse failed: %v - response: %s", err, text),
		}
	}

	return map[string]interface{}{"data": parsed}, nil
}

// newClient builds a client for one request. Proxy schemes other than http,
// https and socks5 are rejected.
func (h *HTTPRequester) newClient(proxyURL string) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: h.connectTimeout, KeepAlive: 30 * time.Second}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, &RequestError{Kind: RequestErrProxy, Msg: "failed to parse proxy URL", Err: err}
		}
		switch u.Scheme {
		case "http", "https":
			tr.Proxy = http.ProxyURL(u)
		case "socks5":
			d, err := proxy.FromURL(u, dialer)
			if err != nil {
				return nil, &RequestError{Kind: RequestErrProxy, Msg: "failed to configure proxy", Err: err}
			}
			cd, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, &RequestError{Kind: RequestErrProxy, Msg: "failed to configure proxy: dialer does not support contexts"}
			}
			tr.Proxy = nil
			tr.DialContext = cd.DialContext
		default:
			return nil, &RequestError{Kind: RequestErrProxy, Msg: fmt.Sprintf("unsupported proxy protocol: %s", u.Scheme)}
		}
	}

	return &http.Client{Transport: tr}, nil
}

// buildHeaders keeps the entries that are valid HTTP field names and values
// and warns about the rest.
func (h *HTTPRequester) buildHeaders(in map[string]string) http.Header {
	headers := make(http.Header, len(in))
	for key, value := range in {
		if !httpguts.ValidHeaderFieldName(key) {
			h.logger.Warn("Dropping request header with invalid name", "name", key)
			continue
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			h.logger.Warn("Dropping request header with invalid value", "name", key, "value", value)
			continue
		}
		headers.Set(key, value)
	}
	return headers
}
