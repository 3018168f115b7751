package feedback

import "time"

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3500 * time.Millisecond

type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindSuccess {
		return "success"
	}
	return "error"
}

type Notification struct {
	Message string
	Kind    Kind
	Visible bool
}

// NotificationCenter keeps at most one visible notification. Every Show arms a
// fresh dismissal token; an older token expiring has no effect.
type NotificationCenter struct {
	ttl     time.Duration
	last    Token
	armed   Token
	current Notification
}

func NewNotificationCenter(ttl time.Duration) *NotificationCenter {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationCenter{ttl: ttl}
}

func (n *NotificationCenter) TTL() time.Duration {
	return n.ttl
}

// Show replaces the current notification. It returns the token to arm and the
// token it superseded, zero if none was pending.
func (n *NotificationCenter) Show(message string, kind Kind) (armed, superseded Token) {
	superseded = n.armed
	n.last++
	n.armed = n.last
	n.current = Notification{Message: message, Kind: kind, Visible: true}
	return n.armed, superseded
}

// Expire hides the notification if token is the pending dismissal.
func (n *NotificationCenter) Expire(token Token) bool {
	if token == 0 || token != n.armed {
		return false
	}
	n.armed = 0
	n.current.Visible = false
	return true
}

func (n *NotificationCenter) Current() Notification {
	return n.current
}
