package mailer

import (
	bCtx "github.com/mspark/gemapi/base/ctx"
)

// Message is a rendered mail ready for delivery.
type Message struct {
	To      string
	Subject string
	Html    string
}

// Mailer delivers notification mails. Delivery failures are logged and
// never bubble into the caller's business flow, use SendAsync for
// fire-and-forget notifications.
type Mailer interface {
	Send(ctx bCtx.Ctx, msg *Message) error
	SendAsync(ctx bCtx.Ctx, msg *Message)
}

type Cfg struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}
