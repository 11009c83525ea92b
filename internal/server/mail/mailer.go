// Package mail delivers transactional email. Sends are dispatched
// fire-and-forget by the callers: a slow or failing provider must never
// delay an HTTP response.
package mail

import "context"

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
