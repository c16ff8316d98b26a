// Package notify delivers handoff notifications to business owners.
package notify

import "context"

// Notification carries everything the business owner needs to follow up.
// Absent contact fields arrive as the literal "Not provided" so the template
// never silently omits a field.
type Notification struct {
	BusinessName  string
	BusinessEmail string
	UserEmail     string
	UserPhone     string
	MainIssue     string
	Summary       string
}

// Notifier dispatches a notification; a nil error means delivery was accepted.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
