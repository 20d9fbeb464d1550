package config

import (
	"fmt"
	"strings"
)

// Validate 校验配置取值范围
func (c *Config) Validate() error {
	var problems []string

	m := c.Matching
	if m.DefaultThreshold <= 0 || m.DefaultThreshold > 1 {
		problems = append(problems, "matching.default_threshold must be in (0, 1]")
	}
	if m.FallbackThreshold <= 0 || m.FallbackThreshold > 1 {
		problems = append(problems, "matching.fallback_threshold must be in (0, 1]")
	}
	if m.MaxLimit < 1 {
		problems = append(problems, "matching.max_limit must be positive")
	}
	if m.DefaultLimit < 1 || m.DefaultLimit > m.MaxLimit {
		problems = append(problems, "matching.default_limit must be in [1, max_limit]")
	}
	if len(m.ReplenishAttempts) == 0 {
		problems = append(problems, "matching.replenish_attempts must not be empty")
	}
	for i, a := range m.ReplenishAttempts {
		if a.Threshold <= 0 || a.Threshold > 1 || a.Count < 1 {
			problems = append(problems, fmt.Sprintf("matching.replenish_attempts[%d] is invalid", i))
		}
	}

	switch c.Vector.Backend {
	case "milvus", "memory":
	default:
		problems = append(problems, fmt.Sprintf("vector.backend %q is not supported", c.Vector.Backend))
	}

	switch c.Feed.Store {
	case "redis", "memory":
	default:
		problems = append(problems, fmt.Sprintf("feed.store %q is not supported", c.Feed.Store))
	}

	if c.Security.JWT.Enabled && c.Security.JWT.Secret == "" {
		problems = append(problems, "security.jwt.secret is required when jwt is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
