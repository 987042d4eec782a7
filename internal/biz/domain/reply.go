package domain

import "strings"

const (
	ReplyYes = "yes"
	ReplyNo  = "no"
)

// ChecksumReply decides yes/no for a message from a user.
// A message mentioning both "buy" and "nuclear" is always "yes"; otherwise the
// parity of the summed Unicode code points of userID and message decides.
func ChecksumReply(userID, message string) string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "buy") && strings.Contains(lower, "nuclear") {
		return ReplyYes
	}

	var sum uint64
	for _, r := range userID {
		sum += uint64(r)
	}
	for _, r := range message {
		sum += uint64(r)
	}

	if sum%2 == 0 {
		return ReplyYes
	}
	return ReplyNo
}
