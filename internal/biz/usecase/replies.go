package usecase

import "strings"

// ReplyTemplates contains the user-visible reply texts.
// Templates support {{content}} and {{suffix}} placeholders.
type ReplyTemplates struct {
	RepliesEnabled        string
	RepliesDisabled       string
	ToggleFailed          string
	ControlUnauthorized   string
	BroadcastNotFound     string
	BroadcastSent         string
	BroadcastFailed       string
	BroadcastUnauthorized string
	SuffixNotFound        string
}

// DefaultReplyTemplates contains the default reply texts
var DefaultReplyTemplates = ReplyTemplates{
	RepliesEnabled:        "🔧 Replies have been enabled",
	RepliesDisabled:       "🔧 Replies have been disabled",
	ToggleFailed:          "❌ Failed to change reply status",
	ControlUnauthorized:   "❌ You are not authorized to control reply settings",
	BroadcastNotFound:     "❌ Broadcast configuration not found",
	BroadcastSent:         `📢 Broadcast message sent to group: "{{content}}"`,
	BroadcastFailed:       `❌ Failed to broadcast message: "{{content}}"`,
	BroadcastUnauthorized: "❌ You are not authorized to use @all broadcasts",
	SuffixNotFound:        "❌ No group found with last 4 digits: {{suffix}}",
}

// WithDefaults fills empty templates from DefaultReplyTemplates
func (t ReplyTemplates) WithDefaults() ReplyTemplates {
	d := DefaultReplyTemplates
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return ReplyTemplates{
		RepliesEnabled:        pick(t.RepliesEnabled, d.RepliesEnabled),
		RepliesDisabled:       pick(t.RepliesDisabled, d.RepliesDisabled),
		ToggleFailed:          pick(t.ToggleFailed, d.ToggleFailed),
		ControlUnauthorized:   pick(t.ControlUnauthorized, d.ControlUnauthorized),
		BroadcastNotFound:     pick(t.BroadcastNotFound, d.BroadcastNotFound),
		BroadcastSent:         pick(t.BroadcastSent, d.BroadcastSent),
		BroadcastFailed:       pick(t.BroadcastFailed, d.BroadcastFailed),
		BroadcastUnauthorized: pick(t.BroadcastUnauthorized, d.BroadcastUnauthorized),
		SuffixNotFound:        pick(t.SuffixNotFound, d.SuffixNotFound),
	}
}

func render(template, content, suffix string) string {
	return strings.NewReplacer("{{content}}", content, "{{suffix}}", suffix).Replace(template)
}
