package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"deskbridge/internal/devserver"
	"deskbridge/internal/types"
)

func newClassifyCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <path>...",
		Short: "Split paths into existing files and folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.load()
			if err != nil {
				return err
			}
			return s.print(a.ClassifyPaths(args))
		},
	}
}

func newSelectionCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "selection",
		Short: "Print the files selected in the focused Explorer window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.load()
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())
			return s.print(a.GetActiveSelection())
		},
	}
}

type requestFlags struct {
	url     string
	method  string
	headers []string
	body    string
	proxy   string
}

func newRequestCommand(s *session) *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a JSON API request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}
			a, err := s.load()
			if err != nil {
				return err
			}
			return s.print(a.SendHTTPRequest(req))
		},
	}
	cmd.Flags().StringVar(&flags.url, "url", "", "Request URL")
	cmd.Flags().StringVarP(&flags.method, "method", "X", "GET", "HTTP method: GET, POST, PUT or DELETE")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, "Header as name=value, repeatable")
	cmd.Flags().StringVarP(&flags.body, "body", "d", "", "JSON request body")
	cmd.Flags().StringVar(&flags.proxy, "proxy", "", "Proxy URL (http, https or socks5)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (f *requestFlags) toRequest() (types.APIRequest, error) {
	req := types.APIRequest{
		URL:     f.url,
		Method:  strings.ToUpper(f.method),
		Headers: make(map[string]string, len(f.headers)),
	}
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, "=")
		if !ok {
			return req, fmt.Errorf("invalid header %q, expected name=value", h)
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if f.body != "" {
		req.Body = json.RawMessage(f.body)
	}
	if f.proxy != "" {
		proxy := f.proxy
		req.Proxy = &proxy
	}
	return req, nil
}

func newServeCommand(s *session) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the host commands over local HTTP for browser-based UI work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.cfg.DevServer.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			defer a.Shutdown(cmd.Context())
			return devserver.Serve(ctx, addr, devserver.NewRouter(a, s.logger), s.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
