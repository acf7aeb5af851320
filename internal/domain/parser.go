package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Target describes the site being audited
type Target struct {
	// URL is the normalized absolute URL of the audited page
	URL string `json:"url"`
	// Host is the lower-cased host without port
	Host string `json:"host"`
	// Domain is the registrable domain (eTLD+1)
	Domain string `json:"domain"`
	// Subdomain is the part of Host left of Domain
	Subdomain string `json:"subdomain,omitempty"`
	// TLD is the public suffix, e.g. co.uk
	TLD string `json:"tld"`
	// SLD is the registrable label left of TLD
	SLD string `json:"sld"`
}

// NormalizeURL trims input, defaults a missing scheme to https and rejects
// anything that is not an http(s) URL with a host
func NormalizeURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyTarget
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	if u.Hostname() == "" {
		return "", ErrInvalidURLFormat
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	return u.String(), nil
}

// ParseTarget normalizes input and splits its host on the public suffix list
func ParseTarget(input string) (*Target, error) {
	normalized, err := NormalizeURL(input)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
	}

	host := strings.TrimSuffix(u.Hostname(), ".")

	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDomainFormat, host)
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomainFormat, err)
	}

	tld, _ := publicsuffix.PublicSuffix(host)

	target := &Target{
		URL:    normalized,
		Host:   host,
		Domain: etld1,
		TLD:    tld,
		SLD:    strings.TrimSuffix(etld1, "."+tld),
	}

	if etld1 != host {
		target.Subdomain = strings.TrimSuffix(host, "."+etld1)
	}

	return target, nil
}
