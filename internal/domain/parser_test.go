package domain

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantURL string
		wantDom string
		wantSub string
		wantTLD string
		wantSLD string
		wantErr error
	}{
		{
			name:    "bare domain",
			input:   "example.com",
			wantURL: "https://example.com",
			wantDom: "example.com",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "subdomain",
			input:   "www.example.com",
			wantURL: "https://www.example.com",
			wantDom: "example.com",
			wantSub: "www",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "nested subdomain with path",
			input:   "https://api.staging.example.com/path/to/resource",
			wantURL: "https://api.staging.example.com/path/to/resource",
			wantDom: "example.com",
			wantSub: "api.staging",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "co.uk tld",
			input:   "www.example.co.uk",
			wantURL: "https://www.example.co.uk",
			wantDom: "example.co.uk",
			wantSub: "www",
			wantTLD: "co.uk",
			wantSLD: "example",
		},
		{
			name:    "mixed case with port and fragment",
			input:   "HTTP://Example.COM:8080/a#cookies",
			wantURL: "http://example.com:8080/a",
			wantDom: "example.com",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "surrounding whitespace",
			input:   "  example.com  ",
			wantURL: "https://example.com",
			wantDom: "example.com",
			wantTLD: "com",
			wantSLD: "example",
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "no tld",
			input:   "example",
			wantErr: ErrInvalidDomainFormat,
		},
		{
			name:    "ip address",
			input:   "http://127.0.0.1:8080",
			wantErr: ErrInvalidDomainFormat,
		},
		{
			name:    "unsupported scheme",
			input:   "ftp://example.com",
			wantErr: ErrUnsupportedScheme,
		},
		{
			name:    "missing host",
			input:   "http://",
			wantErr: ErrInvalidURLFormat,
		},
		{
			name:    "just tld",
			input:   ".com",
			wantErr: ErrInvalidDomainFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := ParseTarget(tc.input)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v for input %q, got %v", tc.wantErr, tc.input, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if target.URL != tc.wantURL {
				t.Errorf("url: expected %q, got %q", tc.wantURL, target.URL)
			}
			if target.Domain != tc.wantDom {
				t.Errorf("domain: expected %q, got %q", tc.wantDom, target.Domain)
			}
			if target.Subdomain != tc.wantSub {
				t.Errorf("subdomain: expected %q, got %q", tc.wantSub, target.Subdomain)
			}
			if target.TLD != tc.wantTLD {
				t.Errorf("tld: expected %q, got %q", tc.wantTLD, target.TLD)
			}
			if target.SLD != tc.wantSLD {
				t.Errorf("sld: expected %q, got %q", tc.wantSLD, target.SLD)
			}
		})
	}
}

func TestNormalizeURLKeepsQuery(t *testing.T) {
	got, err := NormalizeURL("shop.example.com/cart?id=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "https://shop.example.com/cart?id=1"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
