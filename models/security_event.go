package models

import "time"

// SecurityEventKind is the closed set of append-only security events (§3 C5).
type SecurityEventKind string

const (
	EventLoginSuccess    SecurityEventKind = "login_success"
	EventLoginFailed     SecurityEventKind = "login_failed"
	EventAccountLocked   SecurityEventKind = "account_locked"
	EventRefreshUsed     SecurityEventKind = "refresh_token_used"
	EventLogout          SecurityEventKind = "logout"
	EventLogoutAll       SecurityEventKind = "logout_all"
	EventSessionRevoked  SecurityEventKind = "session_revoked"
	EventRateLimited     SecurityEventKind = "rate_limited"
)

// SecurityEventSeverity ranks an event's operational significance.
type SecurityEventSeverity string

const (
	SeverityInfo     SecurityEventSeverity = "info"
	SeverityWarning  SecurityEventSeverity = "warning"
	SeverityCritical SecurityEventSeverity = "critical"
)

// SecurityEvent is an append-only audit record (§3, §5). Records older than
// the retention bound may be discarded by the retention sweep.
type SecurityEvent struct {
	ID          string                 `bson:"id" json:"id"`
	PrincipalID string                 `bson:"principalId,omitempty" json:"principalId,omitempty"`
	Kind        SecurityEventKind      `bson:"kind" json:"kind"`
	Severity    SecurityEventSeverity  `bson:"severity" json:"severity"`
	SourceAddr  string                 `bson:"sourceAddr" json:"sourceAddr"`
	UserAgent   string                 `bson:"userAgent" json:"userAgent"`
	Detail      map[string]interface{} `bson:"detail,omitempty" json:"detail,omitempty"`
	RiskScore   int                    `bson:"riskScore" json:"riskScore"`
	Suspicious  bool                   `bson:"suspicious" json:"suspicious"`
	CreatedAt   time.Time              `bson:"createdAt" json:"createdAt"`
}

// SecurityEventRetention bounds how long events are kept (§3: 7 years).
const SecurityEventRetention = 7 * 365 * 24 * time.Hour
