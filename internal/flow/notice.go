package flow

import "time"

// NoticeTTL is how long a notice stays visible before it auto-expires.
const NoticeTTL = 5 * time.Second

// NoticeLevel classifies a notice for styling.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a dismissible, auto-expiring message shown to the patient.
// Every caught failure produces one; none are silently swallowed.
type Notice struct {
	Level     NoticeLevel
	Message   string
	ExpiresAt time.Time
}

// Active reports whether the notice should still be shown at now.
func (n Notice) Active(now time.Time) bool {
	return now.Before(n.ExpiresAt)
}

// noticeBoard accumulates notices for a controller.
type noticeBoard struct {
	notices []Notice
	now     func() time.Time
}

func newNoticeBoard(now func() time.Time) *noticeBoard {
	if now == nil {
		now = time.Now
	}
	return &noticeBoard{now: now}
}

func (b *noticeBoard) push(level NoticeLevel, message string) {
	b.notices = append(b.notices, Notice{
		Level:     level,
		Message:   message,
		ExpiresAt: b.now().Add(NoticeTTL),
	})
}

// clear drops all notices, shown or not.
func (b *noticeBoard) clear() {
	b.notices = nil
}

// active returns the notices still within their display window, pruning
// expired ones.
func (b *noticeBoard) active() []Notice {
	now := b.now()
	kept := b.notices[:0]
	for _, n := range b.notices {
		if n.Active(now) {
			kept = append(kept, n)
		}
	}
	b.notices = kept
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}
