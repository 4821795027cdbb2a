package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// SocialFeedConfig configures the social page publishing client.
type SocialFeedConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// SocialFeed posts announcements to the school's social media page.
type SocialFeed struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewSocialFeed constructs a social feed client.
func NewSocialFeed(cfg SocialFeedConfig) *SocialFeed {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SocialFeed{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

type accountsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type postResponse struct {
	ID string `json:"id"`
}

// Publish posts the message (optionally with a link) to the first postable
// page on the account and returns the public URL of the created post.
func (s *SocialFeed) Publish(ctx context.Context, message, link string) (string, error) {
	pageID, pageToken, err := s.resolvePage(ctx)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", pageToken)
	if link != "" {
		form.Set("link", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s/feed", s.baseURL, pageID), strings.NewReader(form.Encode()))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "build publish request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "call social feed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "social feed returned an error")
	}

	var parsed postResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "decode publish response")
	}
	if parsed.ID == "" {
		return "", appErrors.Clone(appErrors.ErrExternalPublish, "publish response missing post id")
	}
	return "https://www.facebook.com/" + parsed.ID, nil
}

func (s *SocialFeed) resolvePage(ctx context.Context) (id, token string, err error) {
	u := fmt.Sprintf("%s/me/accounts?access_token=%s", s.baseURL, url.QueryEscape(s.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "build accounts request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "call accounts endpoint")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "accounts endpoint returned an error")
	}

	var parsed accountsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrExternalPublish.Code, appErrors.ErrExternalPublish.Status, "decode accounts response")
	}
	if len(parsed.Data) == 0 {
		return "", "", appErrors.Clone(appErrors.ErrExternalPublish, "no postable page on account")
	}
	return parsed.Data[0].ID, parsed.Data[0].AccessToken, nil
}
