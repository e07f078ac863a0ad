// Package featureflags evaluates rollout flags configured as a list such as
// "like_stream=on,boost_badges=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// LikeStream gates the /ws/likes live feed.
const LikeStream = "like_stream"

// Set holds the rollout percentage of every configured flag.
type Set struct {
	rollout map[string]int
}

// Parse reads a comma-separated name=value list. Values are on/true/1,
// off/false/0 or a percentage such as 25%. Malformed entries are an error.
func Parse(raw string) (*Set, error) {
	s := &Set{rollout: make(map[string]int)}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name, value = normalize(name), normalize(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("feature flag %q must look like name=value", pair)
		}

		pct, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("feature flag %q: %w", name, err)
		}
		s.rollout[name] = pct
	}

	return s, nil
}

func parseValue(value string) (int, error) {
	switch value {
	case "on", "true", "1":
		return 100, nil
	case "off", "false", "0":
		return 0, nil
	}

	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, fmt.Errorf("unsupported value %q", value)
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("percentage %q must be between 0%% and 100%%", value)
	}
	return pct, nil
}

// Enabled reports whether name is on for the given company. Partial rollouts
// put each company in a stable bucket, so a company keeps its answer.
// Unknown flags and a nil Set are off.
func (s *Set) Enabled(name string, companyID uint) bool {
	if s == nil {
		return false
	}
	pct, ok := s.rollout[normalize(name)]
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case companyID == 0:
		return false
	}
	return bucket(name, companyID) < pct
}

// Percent returns the configured rollout for name.
func (s *Set) Percent(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	pct, ok := s.rollout[normalize(name)]
	return pct, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, companyID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), companyID)
	return int(h.Sum32() % 100)
}
