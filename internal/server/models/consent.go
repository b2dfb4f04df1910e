package models

import "time"

// ConsentDecision is the parent's answer recorded on a processed token.
type ConsentDecision string

const (
	DecisionNone     ConsentDecision = ""
	DecisionApproved ConsentDecision = "approved"
	DecisionDenied   ConsentDecision = "denied"
)

// TokenState is the derived lifecycle state of a ConsentToken.
type TokenState string

const (
	TokenPending    TokenState = "pending"
	TokenApproved   TokenState = "approved"
	TokenDenied     TokenState = "denied"
	TokenExpired    TokenState = "expired"
	TokenSuperseded TokenState = "superseded"
)

// ConsentToken is one outstanding or answered request for parental approval.
// Only the HMAC of the opaque token is stored.
type ConsentToken struct {
	ID           string
	TokenHash    string
	ParentEmail  string
	ChildUserID  string
	ChildName    string
	ChildAge     int
	ExpiresAt    time.Time
	IsUsed       bool
	ProcessedAt  *time.Time
	Decision     ConsentDecision
	SupersededAt *time.Time
	CreatedAt    time.Time
}

// State derives the token state at now. A used token keeps its decision
// after expiry.
func (t *ConsentToken) State(now time.Time) TokenState {
	switch {
	case t.IsUsed && t.Decision == DecisionApproved:
		return TokenApproved
	case t.IsUsed:
		return TokenDenied
	case t.SupersededAt != nil:
		return TokenSuperseded
	case now.After(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenPending
	}
}

// ConsentRequest is the input of a parental consent request.
type ConsentRequest struct {
	ParentEmail string `json:"parentEmail"`
	ChildUserID string `json:"-"`
	ChildName   string `json:"childName"`
	ChildAge    int    `json:"childAge"`
}

// ConsentRequestResult reports a persisted request. Token is the raw value
// sent to the parent; it is returned so out-of-band re-notification stays
// possible and is never stored.
type ConsentRequestResult struct {
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Notified  bool      `json:"notified"`
	Warning   string    `json:"warning,omitempty"`
	Token     string    `json:"-"`
}

// ConsentOutcome reports a processed token.
type ConsentOutcome struct {
	ChildUserID       string             `json:"childUserId"`
	Decision          ConsentDecision    `json:"decision"`
	PurchasingEnabled bool               `json:"purchasingEnabled"`
	Restrictions      *RestrictionBundle `json:"restrictions"`
	ProcessedAt       time.Time          `json:"processedAt"`
	Warning           string             `json:"warning,omitempty"`
}

// ConsentNotice is what the parent is sent after a request is persisted.
type ConsentNotice struct {
	ParentEmail string
	ChildName   string
	ChildAge    int
	Link        string
	ExpiresAt   time.Time
}

// ConsentEvidence is the audit document archived after a decision commits.
type ConsentEvidence struct {
	TokenID           string             `json:"tokenId"`
	ChildUserID       string             `json:"childUserId"`
	ChildName         string             `json:"childName"`
	ChildAge          int                `json:"childAge"`
	ParentEmail       string             `json:"parentEmail"`
	Decision          ConsentDecision    `json:"decision"`
	RequestedAt       time.Time          `json:"requestedAt"`
	ProcessedAt       time.Time          `json:"processedAt"`
	Restrictions      *RestrictionBundle `json:"restrictions,omitempty"`
	PurchasingEnabled bool               `json:"purchasingEnabled"`
}
