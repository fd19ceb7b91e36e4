// Package nota produces printable PDF receipts for posted transactions.
package nota

import (
	"errors"
	"time"
)

// Payload carries one receipt ready for template rendering. All monetary
// fields arrive preformatted in rupiah.
type Payload struct {
	DocType    string
	Number     string
	Date       time.Time
	PartyLabel string
	PartyName  string
	Notes      string
	Lines      []Line
	Total      string
	PrintedAt  time.Time
}

// Line is one receipt row.
type Line struct {
	No          int
	ProductName string
	Unit        string
	Qty         string
	UnitAmount  string
	Subtotal    string
}

var (
	// ErrNotPosted rejects printing drafts and cancelled transactions.
	ErrNotPosted = errors.New("nota: transaction is not posted")
)
