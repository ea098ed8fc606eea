package mailer

import (
	"gopkg.in/gomail.v2"

	bCtx "github.com/mspark/gemapi/base/ctx"
	"github.com/mspark/gemapi/base/goroutine"
	"github.com/mspark/gemapi/base/log"
)

type impl struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *Cfg) Mailer {
	return &impl{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (im *impl) Send(ctx bCtx.Ctx, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", im.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Html)

	if err := im.dialer.DialAndSend(m); err != nil {
		ctx.WithFields(log.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
			"err":     err,
		}).Error("DialAndSend failed")
		return err
	}
	return nil
}

func (im *impl) SendAsync(ctx bCtx.Ctx, msg *Message) {
	c := bCtx.Background()
	goroutine.RecoverableGo(func() {
		// delivery failure is already logged, nothing more to do here
		_ = im.Send(c, msg)
	})
}
