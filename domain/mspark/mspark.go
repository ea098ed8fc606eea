package mspark

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mspark/gemapi/base/ctx"
)

type Type string

const (
	TypePrimary   Type = "primary"
	TypeSecondary Type = "secondary"
)

// Mspark is the platform-operator record holding the fee schedule applied
// to merchant payouts.
type Mspark struct {
	Id              string    `json:"id" bson:"id"`
	Name            string    `json:"name" bson:"name"`
	Type            Type      `json:"type" bson:"type"`
	PlatformFee     string    `json:"platformFee" bson:"platformFee"`         // fraction, ex: "0.05"
	VerificationFee string    `json:"verificationFee" bson:"verificationFee"` // fraction, ex: "0.02"
	PayoutCurrency  string    `json:"payoutCurrency" bson:"payoutCurrency"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FeeFractions parses the configured fee strings
func (m *Mspark) FeeFractions() (platform, verification decimal.Decimal, err error) {
	platform, err = decimal.NewFromString(m.PlatformFee)
	if err != nil {
		return
	}
	verification, err = decimal.NewFromString(m.VerificationFee)
	return
}

type Repo interface {
	FindPrimary(c ctx.Ctx) (*Mspark, error)
	Create(c ctx.Ctx, m *Mspark) error
}
