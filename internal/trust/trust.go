// Package trust holds the list of sender domains that bypass analysis.
package trust

import (
	"strings"

	"go.uber.org/zap"
)

// DomainList answers whether a sender address belongs to a trusted domain.
// A nil or empty list trusts nothing.
type DomainList struct {
	domains map[string]struct{}
}

// NewDomainList builds a trusted-domain list. Domains are normalized to
// lowercase.
func NewDomainList(domains []string, logger *zap.Logger) *DomainList {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	if len(set) > 0 && logger != nil {
		logger.Info("Loaded trusted sender domains", zap.Int("count", len(set)))
	}
	return &DomainList{domains: set}
}

// Contains reports whether the address's domain is trusted.
func (l *DomainList) Contains(address string) bool {
	if l == nil || len(l.domains) == 0 {
		return false
	}
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return false
	}
	_, ok := l.domains[strings.ToLower(parts[1])]
	return ok
}
