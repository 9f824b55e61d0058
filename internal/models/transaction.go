package models

import (
	"encoding/xml"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownInstrument is the instrument id used when no card, UPI handle or
// account reference is found in a message.
const UnknownInstrument = "UNKNOWN"

// UPIPrefix marks instrument ids derived from a UPI handle or phone number.
const UPIPrefix = "UPI_"

// Direction tells whether money left or reached the account holder
type Direction string

// Direction constants
const (
	DirectionDebit  Direction = "Debit"
	DirectionCredit Direction = "Credit"
)

// InstrumentKind is the type of payment method referenced by a message
type InstrumentKind string

// InstrumentKind constants
const (
	KindCreditCard  InstrumentKind = "CreditCard"
	KindDebitCard   InstrumentKind = "DebitCard"
	KindUPI         InstrumentKind = "UPI"
	KindBankAccount InstrumentKind = "BankAccount"
	KindWallet      InstrumentKind = "Wallet"
	KindUnknown     InstrumentKind = "Unknown"
)

// Message is a single notification handed to the classifier
type Message struct {
	Sender     string
	Body       string
	ReceivedAt time.Time
}

// ClassificationResult holds the transaction facts extracted from one message
type ClassificationResult struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Merchant        string          `json:"merchant"`
	Category        string          `json:"category"`
	InstrumentID    string          `json:"instrument_id"`
	InstrumentKind  InstrumentKind  `json:"instrument_kind"`
	Direction       Direction       `json:"direction"`
	InstrumentLabel string          `json:"instrument_label"`
	Institution     string          `json:"institution,omitempty"`
}

// Transaction is a classified message as stored and exported by callers
type Transaction struct {
	ID           string
	Amount       decimal.Decimal
	Currency     string
	Category     string
	Merchant     string
	InstrumentID string
	Direction    Direction
	Timestamp    time.Time
	Body         string
	Sender       string
	CreatedAt    time.Time
}

// NewTransaction builds a Transaction record from a message and its result.
func NewTransaction(msg Message, res ClassificationResult) Transaction {
	return Transaction{
		Amount:       res.Amount,
		Currency:     res.Currency,
		Category:     res.Category,
		Merchant:     res.Merchant,
		InstrumentID: res.InstrumentID,
		Direction:    res.Direction,
		Timestamp:    msg.ReceivedAt,
		Body:         msg.Body,
		Sender:       msg.Sender,
	}
}

// Wallet is a payment instrument seen in at least one stored transaction
type Wallet struct {
	ID           string
	DetectedName string
	CustomName   string
	Institution  string
	Kind         InstrumentKind
	CreatedAt    time.Time
	LastUsed     time.Time
}

// NewWallet builds the Wallet record described by a classification result.
func NewWallet(res ClassificationResult, seenAt time.Time) Wallet {
	return Wallet{
		ID:           res.InstrumentID,
		DetectedName: res.InstrumentLabel,
		Institution:  res.Institution,
		Kind:         res.InstrumentKind,
		LastUsed:     seenAt,
	}
}

// DisplayName returns the custom name when set, otherwise the detected one
func (w Wallet) DisplayName() string {
	if w.CustomName != "" {
		return w.CustomName
	}
	return w.DetectedName
}

// SMS represents a single SMS message from the XML backup
type SMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

// SMSBackup represents the root of the XML document
type SMSBackup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []SMS    `xml:"sms"`
}
