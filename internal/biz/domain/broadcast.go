package domain

import "strings"

// BroadcastRule grants one user the right to push messages into one group
type BroadcastRule struct {
	AllowedUserID string
	TargetGroupID string
}

// ParseBroadcastRule parses a "<userId>:<groupId>" entry.
// Entries that do not split into exactly two non-empty parts are rejected.
func ParseBroadcastRule(entry string) (BroadcastRule, bool) {
	parts := strings.Split(strings.TrimSpace(entry), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return BroadcastRule{}, false
	}
	return BroadcastRule{AllowedUserID: parts[0], TargetGroupID: parts[1]}, true
}

// BroadcastDirectory is the read-only, ordered set of broadcast rules
type BroadcastDirectory struct {
	rules []BroadcastRule
}

// NewBroadcastDirectory parses entries in order, silently skipping malformed ones
func NewBroadcastDirectory(entries []string) *BroadcastDirectory {
	d := &BroadcastDirectory{}
	for _, e := range entries {
		if rule, ok := ParseBroadcastRule(e); ok {
			d.rules = append(d.rules, rule)
		}
	}
	return d
}

// Rules returns a copy of the configured rules
func (d *BroadcastDirectory) Rules() []BroadcastRule {
	if d == nil {
		return nil
	}
	out := make([]BroadcastRule, len(d.rules))
	copy(out, d.rules)
	return out
}

// HasAnyRule reports whether at least one rule is configured
func (d *BroadcastDirectory) HasAnyRule() bool {
	return d != nil && len(d.rules) > 0
}

// FindByUser returns the first rule owned by userID
func (d *BroadcastDirectory) FindByUser(userID string) (BroadcastRule, bool) {
	if d == nil {
		return BroadcastRule{}, false
	}
	for _, r := range d.rules {
		if r.AllowedUserID == userID {
			return r, true
		}
	}
	return BroadcastRule{}, false
}

// FindByGroupSuffix returns the first rule whose target group id ends with suffix.
// The comparison ignores ASCII case since command text is lowercased before matching.
func (d *BroadcastDirectory) FindByGroupSuffix(suffix string) (BroadcastRule, bool) {
	if d == nil || suffix == "" {
		return BroadcastRule{}, false
	}
	suffix = strings.ToLower(suffix)
	for _, r := range d.rules {
		if strings.HasSuffix(strings.ToLower(r.TargetGroupID), suffix) {
			return r, true
		}
	}
	return BroadcastRule{}, false
}
