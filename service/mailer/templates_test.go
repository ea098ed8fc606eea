package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testAuction = AuctionMail{
	AuctionId:    "a-1",
	GemId:        "g-1",
	GemName:      "Burmese Ruby",
	GemType:      "ruby",
	CurrentPrice: "1500.00",
	EndTime:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	AuctionUrl:   "https://mspark.example/auction-detail/a-1",
}

func Test_OutbidMail(t *testing.T) {
	req := require.New(t)
	msg, err := OutbidMail("bidder@example.com", testAuction, "1500.00", "1400.00")
	req.NoError(err)
	req.Equal("bidder@example.com", msg.To)
	req.Equal("You've been outbid on Burmese Ruby", msg.Subject)
	req.Contains(msg.Html, "$1500.00")
	req.Contains(msg.Html, "$1400.00")
	req.Contains(msg.Html, testAuction.AuctionUrl)
}

func Test_WinnerPaymentLinkMail(t *testing.T) {
	req := require.New(t)
	msg, err := WinnerPaymentLinkMail("winner@example.com", testAuction, "https://pay.example/123")
	req.NoError(err)
	req.Equal("You won the auction for Burmese Ruby! - Payment Required", msg.Subject)
	req.Contains(msg.Html, "https://pay.example/123")
	req.Contains(msg.Html, "g-1")
}

func Test_MerchantCompletedMail(t *testing.T) {
	req := require.New(t)

	msg, err := MerchantCompletedMail("merchant@example.com", testAuction, "topbidder")
	req.NoError(err)
	req.Equal("Your auction for Burmese Ruby has completed", msg.Subject)
	req.Contains(msg.Html, "topbidder")
	req.Contains(msg.Html, "$1500.00")

	msg, err = MerchantCompletedMail("merchant@example.com", testAuction, "")
	req.NoError(err)
	req.Contains(msg.Html, "no bidders were interested")
	req.NotContains(msg.Html, "winning bidder")
}

func Test_PaymentStatusMail(t *testing.T) {
	req := require.New(t)

	msg, err := PaymentStatusMail("winner@example.com", "Burmese Ruby", "1500.00", "paid")
	req.NoError(err)
	req.Equal("Payment received for Burmese Ruby", msg.Subject)
	req.Contains(msg.Html, "has been confirmed")

	msg, err = PaymentStatusMail("winner@example.com", "Burmese Ruby", "1500.00", "expired")
	req.NoError(err)
	req.Equal("Payment expired for Burmese Ruby", msg.Subject)
	req.Contains(msg.Html, "expired")
}
