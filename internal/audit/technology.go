package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/projectdiscovery/cdncheck"
	wappalyzer "github.com/projectdiscovery/wappalyzergo"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/consentaudit/internal/fetch"
)

const (
	// defaultLookupTimeout bounds the DNS lookups of infrastructure detection
	defaultLookupTimeout = 5 * time.Second

	sourceWappalyzer = "wappalyzer"
)

// TechnologyDetail holds enriched information about a detected technology
type TechnologyDetail struct {
	// Name is the technology name as identified by wappalyzer
	Name string `json:"name"`
	// Categories lists the wappalyzer categories for this technology
	Categories []string `json:"categories,omitempty"`
	// Website is the official website URL for the technology
	Website string `json:"website,omitempty"`
	// Description is a brief description of the technology
	Description string `json:"description,omitempty"`
	// Source indicates how the technology was detected
	Source string `json:"source,omitempty"`
}

// InfrastructureProvider holds a detected hosting provider (CDN, cloud, WAF)
type InfrastructureProvider struct {
	// Provider is the provider name, e.g. cloudflare
	Provider string `json:"provider"`
	// Category is the infrastructure type, e.g. cdn, cloud or waf
	Category string `json:"category"`
	// Details describes how the provider was detected
	Details string `json:"details"`
}

// excludedTechnologyNames lists protocol features and web standards that are
// not products and are left out of the results
var excludedTechnologyNames = map[string]struct{}{
	"HTTP/2":            {},
	"HTTP/3":            {},
	"QUIC":              {},
	"HSTS":              {},
	"Open Graph":        {},
	"Twitter Cards":     {},
	"Schema.org":        {},
	"JSON-LD":           {},
	"Meta Tags":         {},
	"WebP":              {},
	"Webpack":           {},
	"Vite":              {},
	"Module Federation": {},
}

// resolver is the subset of net.Resolver used for infrastructure detection
type resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// TechnologyDetector fingerprints page technologies and hosting providers
type TechnologyDetector struct {
	fingerprinter *wappalyzer.Wappalyze
	cdn           *cdncheck.Client
	resolver      resolver
	lookupTimeout time.Duration
}

// NewTechnologyDetector loads the fingerprint and provider databases. Loading
// is expensive, so one detector is shared by all audits.
func NewTechnologyDetector() (*TechnologyDetector, error) {
	client, err := wappalyzer.New()
	if err != nil {
		return nil, fmt.Errorf("initializing wappalyzer: %w", err)
	}

	return &TechnologyDetector{
		fingerprinter: client,
		cdn:           cdncheck.New(),
		resolver:      net.DefaultResolver,
		lookupTimeout: defaultLookupTimeout,
	}, nil
}

// Detect fingerprints the page and resolves the hosting providers of its host
func (d *TechnologyDetector) Detect(ctx context.Context, page *fetch.Page) ([]TechnologyDetail, []InfrastructureProvider) {
	technologies := d.Fingerprint(page.Headers, page.HTML)

	host := hostOf(page.FinalURL)
	if host == "" {
		host = hostOf(page.URL)
	}

	var providers []InfrastructureProvider
	if host != "" {
		providers = d.Infrastructure(ctx, host)
	}

	return technologies, providers
}

// Fingerprint identifies technologies from response headers and body. Results
// are sorted by name.
func (d *TechnologyDetector) Fingerprint(headers map[string][]string, body string) []TechnologyDetail {
	fingerprints := d.fingerprinter.FingerprintWithInfo(http.Header(headers), []byte(body))
	technologies := make([]TechnologyDetail, 0, len(fingerprints))

	for tech, info := range fingerprints {
		if _, excluded := excludedTechnologyNames[tech]; excluded {
			continue
		}

		technologies = append(technologies, TechnologyDetail{
			Name:        tech,
			Categories:  info.Categories,
			Website:     info.Website,
			Description: info.Description,
			Source:      sourceWappalyzer,
		})
	}

	sort.Slice(technologies, func(i, j int) bool {
		return technologies[i].Name < technologies[j].Name
	})

	return technologies
}

// Infrastructure detects the CDN, cloud and WAF providers of host from its
// CNAME and addresses. Lookup failures yield no providers.
func (d *TechnologyDetector) Infrastructure(ctx context.Context, host string) []InfrastructureProvider {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout)
	defer cancel()

	seen := make(map[string]bool)

	var providers []InfrastructureProvider

	add := func(provider, itemType, details string) {
		key := fmt.Sprintf("%s:%s", provider, itemType)
		if seen[key] {
			return
		}

		seen[key] = true

		providers = append(providers, InfrastructureProvider{
			Provider: provider,
			Category: itemType,
			Details:  details,
		})
	}

	if cname, err := d.resolver.LookupCNAME(lookupCtx, host); err == nil && cname != host+"." {
		cnameClean := strings.TrimSuffix(cname, ".")
		if matched, provider, itemType, checkErr := d.cdn.CheckSuffix(cnameClean); matched && checkErr == nil && provider != "" {
			add(provider, itemType, fmt.Sprintf("CNAME points to %s", cnameClean))
		}
	}

	ips, err := d.resolver.LookupIP(lookupCtx, "ip", host)
	if err != nil {
		log.Debug().Err(err).Str("host", host).Msg("infrastructure lookup failed")
		return providers
	}

	for _, ip := range ips {
		matched, provider, itemType, checkErr := d.cdn.Check(ip)
		if checkErr == nil && matched && provider != "" {
			add(provider, itemType, fmt.Sprintf("IP %s belongs to %s", ip.String(), provider))
		}
	}

	return providers
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return u.Hostname()
}
