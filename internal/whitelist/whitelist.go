// Package whitelist decides which senders bypass classification.
package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against trusted domains. A domain entry
// also covers its subdomains, so "example.com" matches "team.example.com".
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a checker for the given domains. Blank entries are ignored.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	set := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
		domain = strings.TrimPrefix(domain, "*.")
		if domain != "" {
			set[domain] = struct{}{}
		}
	}

	if len(set) > 0 {
		logger.Info("Initialized sender domain whitelist", zap.Int("domains", len(set)))
	}

	return &Checker{domains: set, logger: logger}
}

// Len returns the number of configured domains
func (c *Checker) Len() int {
	return len(c.domains)
}

// IsWhitelisted reports whether the sender's domain, or a parent of it, is trusted.
// from may be a bare address or a full "Name <addr>" form.
func (c *Checker) IsWhitelisted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	for domain != "" {
		if _, ok := c.domains[domain]; ok {
			c.logger.Debug("Sender domain is whitelisted",
				zap.String("domain", domain),
				zap.String("sender", from))
			return true
		}
		_, parent, found := strings.Cut(domain, ".")
		if !found {
			break
		}
		domain = parent
	}

	return false
}

// senderDomain returns the lowercased domain of an address, or "" when there is none
func senderDomain(from string) string {
	address := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}

	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(address[at+1:], ">"))
}
