package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Profile is what the identity directory knows about a user. Blank fields
// are legal; the caller substitutes placeholders.
type Profile struct {
	Name  string
	Email string
}

// Client talks to the identity provider's user directory (Graph-style
// REST API). With an empty base URL it degrades to a stub that returns
// blank profiles, which keeps local runs working without the directory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type directoryUser struct {
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Lookup fetches display name and email for an external identity. Errors
// surface unretried; the email falls back from mail to userPrincipalName.
func (c *Client) Lookup(ctx context.Context, externalID string) (Profile, error) {
	if c.baseURL == "" {
		return Profile{}, nil
	}

	u := fmt.Sprintf("%s/v1.0/users/%s?$select=displayName,mail,userPrincipalName",
		c.baseURL, url.PathEscape(externalID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("directory lookup: status %d: %s", resp.StatusCode, body)
	}

	var du directoryUser
	if err := json.NewDecoder(resp.Body).Decode(&du); err != nil {
		return Profile{}, fmt.Errorf("directory lookup: decode: %w", err)
	}

	email := du.Mail
	if email == "" {
		email = du.UserPrincipalName
	}
	return Profile{Name: du.DisplayName, Email: email}, nil
}
