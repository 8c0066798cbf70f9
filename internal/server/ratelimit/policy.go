package ratelimit

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/jonathan/career-guidance/internal/config"
)

// Scope selects what a tier's buckets are keyed on.
type Scope int

const (
	// ScopeClient keys on the client IP
	ScopeClient Scope = iota
	// ScopeUser keys on the authenticated user and falls back to the client
	// IP for anonymous requests, so users behind one NAT do not share a budget
	ScopeUser
)

// Tier is a named budget for one route. Rate tokens are added per Window up
// to Burst.
type Tier struct {
	Name   string
	Method string
	Path   string
	Rate   int
	Window time.Duration
	Burst  int
	Scope  Scope
}

func (t Tier) perSecond() float64 {
	return float64(t.Rate) / t.Window.Seconds()
}

func (t Tier) capacity() float64 {
	if t.Burst > 0 {
		return float64(t.Burst)
	}
	return float64(t.Rate)
}

// Config holds the limiter policy.
type Config struct {
	Enabled bool
	// Default applies to every route without a tier of its own
	Default Tier
	Tiers   []Tier
	// Allow is never limited; Deny is always rejected
	Allow []netip.Prefix
	Deny  []netip.Prefix
	// SweepInterval is how often buckets that have refilled are dropped
	SweepInterval time.Duration
}

// DefaultTiers prices the routes by what a request costs the service.
// Recommendations scan the whole catalog and persist a result; chat and
// skill gaps are cheap reads of one profile; profile writes evict the user's
// cached recommendation.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "login", Method: http.MethodPost, Path: "/v1/auth/login", Rate: 20, Window: time.Minute, Burst: 5, Scope: ScopeClient},
		{Name: "register", Method: http.MethodPost, Path: "/v1/auth/register", Rate: 10, Window: time.Minute, Burst: 3, Scope: ScopeClient},
		{Name: "password", Method: http.MethodPut, Path: "/v1/users/me/password", Rate: 10, Window: time.Minute, Burst: 3, Scope: ScopeUser},
		{Name: "profile", Method: http.MethodPut, Path: "/v1/users/me/profile", Rate: 30, Window: time.Minute, Burst: 5, Scope: ScopeUser},
		{Name: "recommendations", Method: http.MethodGet, Path: "/v1/ai/recommendations", Rate: 20, Window: time.Minute, Burst: 5, Scope: ScopeUser},
		{Name: "skill-gap", Method: http.MethodPost, Path: "/v1/ai/skill-gap", Rate: 60, Window: time.Minute, Burst: 10, Scope: ScopeUser},
		{Name: "chat", Method: http.MethodPost, Path: "/v1/ai/chat", Rate: 30, Window: time.Minute, Burst: 6, Scope: ScopeUser},
	}
}

// FromSettings builds the limiter policy from the service config. Allow and
// deny entries may be addresses or CIDR prefixes.
func FromSettings(s config.RateLimitConfig) (*Config, error) {
	if !s.Enabled {
		return &Config{Enabled: false}, nil
	}

	allow, err := parsePrefixes(s.Whitelist)
	if err != nil {
		return nil, fmt.Errorf("ratelimit whitelist: %w", err)
	}
	deny, err := parsePrefixes(s.Blacklist)
	if err != nil {
		return nil, fmt.Errorf("ratelimit blacklist: %w", err)
	}

	return &Config{
		Enabled: true,
		Default: Tier{
			Name:   "default",
			Rate:   s.DefaultLimit,
			Window: s.DefaultWindow,
			Scope:  ScopeClient,
		},
		Tiers:         DefaultTiers(),
		Allow:         allow,
		Deny:          deny,
		SweepInterval: s.CleanupInterval,
	}, nil
}

func parsePrefixes(list []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(list))
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out, nil
}

// exempt reports routes that are never counted, including CORS preflights
func exempt(method, path string) bool {
	if method == http.MethodOptions {
		return true
	}
	return method == http.MethodGet && (path == "/health" || path == "/metrics")
}

// tierFor returns the tier for a request, or nil for an exempt route
func (c *Config) tierFor(method, path string) *Tier {
	if exempt(method, path) {
		return nil
	}
	path = strings.TrimSuffix(path, "/")
	for i := range c.Tiers {
		if c.Tiers[i].Method == method && c.Tiers[i].Path == path {
			return &c.Tiers[i]
		}
	}
	return &c.Default
}

func contains(prefixes []netip.Prefix, ip string) bool {
	if len(prefixes) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
