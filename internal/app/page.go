package service

import (
	"fmt"
	"strings"
)

// Page is a step of the discovery flow.
type Page string

const (
	PageLanding    Page = "landing"
	PageAuth       Page = "auth"
	PageOnboarding Page = "onboarding"
	PageHome       Page = "home"
	PageProfile    Page = "profile"
)

// ParsePage maps a path segment to a Page.
func ParsePage(s string) (Page, error) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageLanding, PageAuth, PageOnboarding, PageHome, PageProfile:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
	}
}
