package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// AuctionMail carries the auction snapshot the templates render from.
type AuctionMail struct {
	AuctionId    string
	GemId        string
	GemName      string
	GemType      string
	CurrentPrice string
	EndTime      time.Time
	AuctionUrl   string
}

var outbidTmpl = template.Must(template.New("outbid").Parse(`
<h2>You've Been Outbid on {{.Auction.GemName}}</h2>
<p><strong>Item:</strong> {{.Auction.GemName}}</p>
<p><strong>New Highest Bid:</strong> ${{.NewAmount}}</p>
<p><strong>Your Previous Bid:</strong> ${{.PreviousAmount}}</p>
<p>The auction is still active - you can place a new bid to regain the lead!</p>
<p><a href="{{.Auction.AuctionUrl}}">Place New Bid</a></p>
<p>Auction ends at: {{.Auction.EndTime.Format "2006-01-02 15:04:05 MST"}}</p>
`))

func OutbidMail(to string, auction AuctionMail, newAmount, previousAmount string) (*Message, error) {
	html, err := render(outbidTmpl, struct {
		Auction        AuctionMail
		NewAmount      string
		PreviousAmount string
	}{auction, newAmount, previousAmount})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("You've been outbid on %s", auction.GemName),
		Html:    html,
	}, nil
}

var winnerPaymentLinkTmpl = template.Must(template.New("winnerPaymentLink").Parse(`
<h2>Congratulations! You Won: {{.Auction.GemName}}</h2>
<p><strong>Gem ID:</strong> {{.Auction.GemId}}</p>
<p><strong>Final Price:</strong> ${{.Auction.CurrentPrice}}</p>
<p><strong>Gem Type:</strong> {{.Auction.GemType}}</p>
<p>Please complete your payment to receive the gem.</p>
<p><a href="{{.PaymentUrl}}">Pay Now</a></p>
`))

func WinnerPaymentLinkMail(to string, auction AuctionMail, paymentUrl string) (*Message, error) {
	html, err := render(winnerPaymentLinkTmpl, struct {
		Auction    AuctionMail
		PaymentUrl string
	}{auction, paymentUrl})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("You won the auction for %s! - Payment Required", auction.GemName),
		Html:    html,
	}, nil
}

var merchantCompletedTmpl = template.Must(template.New("merchantCompleted").Parse(`
<h2>Auction Completed: {{.Auction.GemName}}</h2>
<h3>GemId: {{.Auction.GemId}}</h3>
{{if .WinnerUsername -}}
<p>Final Price: ${{.Auction.CurrentPrice}}</p>
<p>The winning bidder was: {{.WinnerUsername}}</p>
<p>Gems will be delivered to the winner first.</p>
<p>After the product has reached the winner soundly, money will be transferred to your wallet.</p>
{{- else -}}
<p>Sorry, no bidders were interested this time.</p>
<p>Try again with a new price or a longer auction time.</p>
{{- end}}
`))

// MerchantCompletedMail notifies the merchant that an auction has ended.
// An empty winnerUsername renders the no-winner variant.
func MerchantCompletedMail(to string, auction AuctionMail, winnerUsername string) (*Message, error) {
	html, err := render(merchantCompletedTmpl, struct {
		Auction        AuctionMail
		WinnerUsername string
	}{auction, winnerUsername})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Your auction for %s has completed", auction.GemName),
		Html:    html,
	}, nil
}

var paymentPaidTmpl = template.Must(template.New("paymentPaid").Parse(`
<h2>Payment Received</h2>
<p>Your payment of ${{.Amount}} for {{.GemName}} has been confirmed.</p>
<p>The gem will be delivered to you shortly.</p>
`))

var paymentFailedTmpl = template.Must(template.New("paymentFailed").Parse(`
<h2>Payment Unsuccessful</h2>
<p>Your payment for {{.GemName}} is {{.Status}}.</p>
<p>You can request a new payment link from your dashboard.</p>
`))

// PaymentStatusMail notifies the bidder about the outcome of an order
// payment. `paid` renders the confirmation variant, terminal failure
// statuses render the retry hint.
func PaymentStatusMail(to, gemName, amount, status string) (*Message, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	if status == "paid" {
		tmpl = paymentPaidTmpl
		subject = fmt.Sprintf("Payment received for %s", gemName)
	} else {
		tmpl = paymentFailedTmpl
		subject = fmt.Sprintf("Payment %s for %s", status, gemName)
	}
	html, err := render(tmpl, struct {
		GemName string
		Amount  string
		Status  string
	}{gemName, amount, status})
	if err != nil {
		return nil, err
	}
	return &Message{To: to, Subject: subject, Html: html}, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
