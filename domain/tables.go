package domain

// Table is a mongo collection name
type Table string

const (
	TableAccounts Table = "accounts"
	TableGems     Table = "gems"
	TableAuctions Table = "auctions"
	TableBids     Table = "bids"
	TablePayments Table = "payments"
	TableMsparks  Table = "msparks"
)
