// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"autopress/internal/config"
)

const (
	redditAuthURL = "https://www.reddit.com"
	redditAPIURL  = "https://oauth.reddit.com"
)

// Reddit submits posts to a subreddit as a script application, using the
// OAuth2 password grant.
type Reddit struct {
	cfg     config.Reddit
	authURL string
	apiURL  string
	client  *http.Client
}

// NewReddit creates a Reddit notifier.
func NewReddit(cfg config.Reddit) *Reddit {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "autopress/1.0"
	}
	if cfg.Kind == "" {
		cfg.Kind = "link"
	}
	return &Reddit{
		cfg:     cfg,
		authURL: redditAuthURL,
		apiURL:  redditAPIURL,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport},
		},
	}
}

func (r *Reddit) Name() string { return "reddit" }

// Notify obtains an access token and submits the announcement.
func (r *Reddit) Notify(ctx context.Context, a Announcement) error {
	client, err := r.authorize(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"sr":       {r.cfg.Subreddit},
		"title":    {truncate(a.Title, 300)},
		"kind":     {r.cfg.Kind},
		"api_type": {"json"},
		"resubmit": {"true"},
	}
	if r.cfg.Kind == "self" {
		text := a.URL
		if a.Excerpt != "" {
			text = a.Excerpt + "\n\n" + a.URL
		}
		form.Set("text", text)
	} else {
		form.Set("url", a.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL+"/api/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("reddit submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		JSON struct {
			Errors [][]any `json:"errors"`
			Data   struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := do(client, req, &result); err != nil {
		return fmt.Errorf("reddit submit: %w", err)
	}
	if len(result.JSON.Errors) > 0 {
		return fmt.Errorf("reddit submit rejected: %v", result.JSON.Errors)
	}
	return nil
}

// authorize performs the password grant and returns a client that sends the
// access token with every request.
func (r *Reddit) authorize(ctx context.Context) (*http.Client, error) {
	conf := &oauth2.Config{
		ClientID:     r.cfg.ClientID,
		ClientSecret: r.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  r.authURL + "/api/v1/access_token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	tok, err := conf.PasswordCredentialsToken(ctx, r.cfg.Username, r.cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("reddit token: %w", err)
	}

	client := conf.Client(ctx, tok)
	client.Timeout = r.client.Timeout
	return client, nil
}

// userAgentTransport sets the User-Agent Reddit requires on every request,
// token exchange included.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

func do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
