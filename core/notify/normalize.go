package notify

import (
	"strings"
	"unicode"

	"melofm/model"
)

// The backend still emits some notification copy in Chinese. The UI displays
// English only, so display text is rewritten on ingress: an exact-substring
// pattern match wins outright; otherwise any Han character in the title or
// message swaps in the per-type default copy. Type and metadata are never
// touched — business logic (review actions keyed on metadata.reviewId) sees
// the original payload.

// Copy is a display title/message pair.
type Copy struct {
	Title   string
	Message string
}

// patterns are checked first, in order, against title then message.
var patterns = []struct {
	substr string
	copy   Copy
}{
	{"审核通过", Copy{"Song approved", "Your uploaded song passed review and is now live."}},
	{"审核未通过", Copy{"Song rejected", "Your uploaded song did not pass review."}},
	{"已驳回", Copy{"Song rejected", "Your uploaded song did not pass review."}},
	{"点歌成功", Copy{"Request fulfilled", "Your song request has been added to the library."}},
	{"歌单邀请", Copy{"Playlist invite", "You have been invited to collaborate on a playlist."}},
}

// defaults provide per-type copy when no pattern matched but the original
// text is in the flagged script.
var defaults = map[string]Copy{
	model.NotificationSongApproved:     {"Song approved", "Your uploaded song passed review and is now live."},
	model.NotificationSongRejected:     {"Song rejected", "Your uploaded song did not pass review."},
	model.NotificationRequestCompleted: {"Request fulfilled", "Your song request has been added to the library."},
	model.NotificationPlaylistInvite:   {"Playlist invite", "You have been invited to collaborate on a playlist."},
}

var genericDefault = Copy{"Notification", "You have a new notification."}

// Normalize returns a copy of n with display-safe title and message. The
// input is not modified.
func Normalize(n *model.Notification) *model.Notification {
	out := *n

	if c, ok := matchPattern(n.Title, n.Message); ok {
		out.Title = c.Title
		out.Message = c.Message
		return &out
	}

	if containsHan(n.Title) || containsHan(n.Message) {
		c, ok := defaults[n.Type]
		if !ok {
			c = genericDefault
		}
		out.Title = c.Title
		out.Message = c.Message
	}
	return &out
}

func matchPattern(title, message string) (Copy, bool) {
	for _, p := range patterns {
		if strings.Contains(title, p.substr) || strings.Contains(message, p.substr) {
			return p.copy, true
		}
	}
	return Copy{}, false
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
