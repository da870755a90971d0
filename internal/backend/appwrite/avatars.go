package appwrite

import (
	"errors"
	"net/url"
	"strings"
)

// InitialsURL returns the initials avatar URL for name.
func (c *Client) InitialsURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("initials: empty name")
	}
	return c.URL("/avatars/initials", url.Values{"name": {name}}), nil
}
