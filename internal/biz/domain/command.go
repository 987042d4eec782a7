package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommandKind classifies an inbound text
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandOn
	CommandOff
	CommandDolphin
	CommandAll
	CommandAllSuffix
)

const (
	prefixOn      = "@on"
	prefixOff     = "@off"
	prefixDolphin = "@dolphin"
	prefixAll     = "@all"
)

var allSuffixPattern = regexp.MustCompile(`^@all\+(\w{4})`)

// String returns the command name used in logs
func (k CommandKind) String() string {
	switch k {
	case CommandOn:
		return "on"
	case CommandOff:
		return "off"
	case CommandDolphin:
		return "dolphin"
	case CommandAll:
		return "all"
	case CommandAllSuffix:
		return "all+suffix"
	default:
		return "none"
	}
}

// Command is the result of classifying a message text
type Command struct {
	Kind    CommandKind
	Suffix  string // lowercased 4-character group suffix for CommandAllSuffix
	Content string // text after the trigger prefix, trimmed
}

// IsControl checks for @on / @off
func (c Command) IsControl() bool {
	return c.Kind == CommandOn || c.Kind == CommandOff
}

// IsTrigger checks for @dolphin, @all and @all+XXXX
func (c Command) IsTrigger() bool {
	return c.Kind == CommandDolphin || c.Kind == CommandAll || c.Kind == CommandAllSuffix
}

// IsBroadcast checks for @all and @all+XXXX
func (c Command) IsBroadcast() bool {
	return c.Kind == CommandAll || c.Kind == CommandAllSuffix
}

// ParseCommand classifies text by prefix on its trimmed, lowercased form.
// Content is cut from the trimmed original text so its case is preserved.
func ParseCommand(text string) Command {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, prefixOff):
		return Command{Kind: CommandOff}
	case strings.HasPrefix(lower, prefixOn):
		return Command{Kind: CommandOn}
	case strings.HasPrefix(lower, prefixDolphin):
		return Command{Kind: CommandDolphin, Content: contentAfter(trimmed, len(prefixDolphin))}
	}

	if m := allSuffixPattern.FindStringSubmatch(lower); m != nil {
		return Command{
			Kind:    CommandAllSuffix,
			Suffix:  m[1],
			Content: contentAfter(trimmed, len(m[0])),
		}
	}
	if strings.HasPrefix(lower, prefixAll) {
		return Command{Kind: CommandAll, Content: contentAfter(trimmed, len(prefixAll))}
	}
	return Command{Kind: CommandNone}
}

// contentAfter cuts a prefix that is n bytes long in lowercased form from trimmed.
// Lowercasing can change a rune's byte length, so the offset is found rune by rune.
func contentAfter(trimmed string, n int) string {
	consumed := 0
	for i, r := range trimmed {
		if consumed >= n {
			return strings.TrimSpace(trimmed[i:])
		}
		consumed += utf8.RuneLen(unicode.ToLower(r))
	}
	return ""
}
