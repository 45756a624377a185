package domain

// CorrectiveStatus is the derived position of a corrective action across its
// verification and follow-up axes.
type CorrectiveStatus string

// Derived corrective-action states.
const (
	// CorrectiveStatusPending means neither verified nor (when required) followed up.
	CorrectiveStatusPending CorrectiveStatus = "pending"
	// CorrectiveStatusAwaitingFollowUp means verified but follow-up outstanding.
	CorrectiveStatusAwaitingFollowUp CorrectiveStatus = "awaiting_follow_up"
	// CorrectiveStatusAwaitingVerification means follow-up done or not required, not verified.
	CorrectiveStatusAwaitingVerification CorrectiveStatus = "awaiting_verification"
	// CorrectiveStatusClosed means verified with no follow-up outstanding.
	CorrectiveStatusClosed CorrectiveStatus = "closed"
)

// FollowUpOutstanding reports whether a required follow-up is still open.
func (l CorrectiveActionLog) FollowUpOutstanding() bool {
	return l.FollowUpRequired && !l.FollowUpCompleted
}

// Closed is verified AND (no follow-up required OR follow-up completed).
func (l CorrectiveActionLog) Closed() bool {
	return l.Verified && !l.FollowUpOutstanding()
}

// Status derives the combined workflow state.
func (l CorrectiveActionLog) Status() CorrectiveStatus {
	switch {
	case l.Closed():
		return CorrectiveStatusClosed
	case l.Verified:
		return CorrectiveStatusAwaitingFollowUp
	case !l.FollowUpOutstanding():
		return CorrectiveStatusAwaitingVerification
	default:
		return CorrectiveStatusPending
	}
}
