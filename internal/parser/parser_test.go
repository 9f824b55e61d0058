package parser

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-classifier/internal/config"
	"sms-classifier/internal/models"
)

func defaultParser(t *testing.T) *Parser {
	t.Helper()
	rules, err := config.Default()
	require.NoError(t, err)
	p, err := New(rules)
	require.NoError(t, err)
	return p
}

func TestClassify_Scenarios(t *testing.T) {
	p := defaultParser(t)

	t.Run("indian bank debit", func(t *testing.T) {
		res, ok := p.Classify("Rs.500 debited from your account ending 1234 at AMAZON on 12-01-24", "HDFCBK")
		require.True(t, ok)

		assert.True(t, decimal.NewFromInt(500).Equal(res.Amount))
		assert.Equal(t, "INR", res.Currency)
		assert.Equal(t, models.DirectionDebit, res.Direction)
		assert.Equal(t, "AMAZON", res.Merchant)
		assert.Equal(t, "Shopping", res.Category)
		assert.Equal(t, "1234", res.InstrumentID)
		assert.Equal(t, models.KindDebitCard, res.InstrumentKind)
		assert.Equal(t, "HDFC", res.Institution)
		assert.Equal(t, "HDFC - XX1234", res.InstrumentLabel)
	})

	t.Run("uae card spend", func(t *testing.T) {
		res, ok := p.Classify("AED 85.36 spent at CAREEM using card XX5566", "ADCB")
		require.True(t, ok)

		assert.True(t, decimal.RequireFromString("85.36").Equal(res.Amount))
		assert.Equal(t, "AED", res.Currency)
		assert.Equal(t, models.DirectionDebit, res.Direction)
		assert.Equal(t, "CAREEM", res.Merchant)
		assert.Equal(t, "Transportation", res.Category)
		assert.Equal(t, "5566", res.InstrumentID)
		assert.Equal(t, "ADCB", res.Institution)
		assert.Equal(t, "ADCB - XX5566", res.InstrumentLabel)
	})

	t.Run("promotional message", func(t *testing.T) {
		body := "Flat 50% off this weekend! Visit our store today."
		_, ok := p.Classify(body, "VM-OFFERS")
		assert.False(t, ok)
		assert.False(t, p.IsTransactionMessage("VM-OFFERS", body))
	})

	t.Run("credit to account", func(t *testing.T) {
		res, ok := p.Classify("You received Rs.2000 credited to your account from XYZ", "SBIINB")
		require.True(t, ok)

		assert.Equal(t, models.DirectionCredit, res.Direction)
		assert.True(t, decimal.NewFromInt(2000).Equal(res.Amount))
		assert.Equal(t, "SBI", res.Institution)
	})
}

func TestClassify_Defaults(t *testing.T) {
	p := defaultParser(t)

	res, ok := p.Classify("Rs 75 xyz", "MYSHOP")
	require.True(t, ok)

	assert.Equal(t, UnknownMerchant, res.Merchant)
	assert.Equal(t, "Miscellaneous", res.Category)
	assert.Equal(t, models.UnknownInstrument, res.InstrumentID)
	assert.Equal(t, models.KindUnknown, res.InstrumentKind)
	assert.Equal(t, models.DirectionDebit, res.Direction)
	assert.Empty(t, res.Institution)
}

func TestClassifyMessage(t *testing.T) {
	p := defaultParser(t)

	msg := models.Message{Sender: "ADCB", Body: "AED 85.36 spent at CAREEM using card XX5566"}
	fromMessage, ok := p.ClassifyMessage(msg)
	require.True(t, ok)

	direct, _ := p.Classify(msg.Body, msg.Sender)
	assert.Equal(t, direct, fromMessage)
}

func TestExtractAmount_RoundTrip(t *testing.T) {
	p := defaultParser(t)

	values := []string{"0.01", "1", "9.99", "100.5", "1000", "12345.67", "999999.99", "1000000"}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		cents := rng.Int63n(100_000_000) + 1
		values = append(values, decimal.New(cents, -2).String())
	}

	for _, v := range values {
		want := decimal.RequireFromString(v)
		body := fmt.Sprintf("Rs.%s debited", want.StringFixed(2))

		got, ok := p.ExtractAmount(body)
		require.True(t, ok, body)
		assert.True(t, want.Round(2).Equal(got.Value), "%s: got %s", body, got.Value)
		assert.Equal(t, "INR", got.Currency)
	}
}

func TestExtractAmount(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		name     string
		body     string
		want     string
		currency string
		ok       bool
	}{
		{"rupee prefix", "Rs.1,250.50 spent", "1250.50", "INR", true},
		{"inr suffix", "Paid 300 INR to shop", "300", "INR", true},
		{"aed suffix", "Purchase of 42.10 AED at store", "42.10", "AED", true},
		{"arabic body", "تم خصم AED 120 من بطاقتك", "120", "AED", true},
		{"zero", "Rs.0 debited", "", "", false},
		{"zero with decimals", "Rs.0.00 debited", "", "", false},
		{"too large", "Rs.1500000 debited", "", "", false},
		{"negative", "Rs.-500 debited", "", "", false},
		{"no currency", "Your OTP is 482913", "", "", false},
		{"out of range falls through", "Rs.2000000 debited, paid Rs.300", "300", "INR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.ExtractAmount(tt.body)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Value), "got %s", got.Value)
			assert.Equal(t, tt.currency, got.Currency)
		})
	}
}

func TestDetectDirection(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		body string
		want models.Direction
	}{
		{"Rs.100 debited from a/c", models.DirectionDebit},
		{"Refund of Rs.100 received", models.DirectionCredit},
		{"Cashback earned", models.DirectionCredit},
		{"Refund credited after amount debited", models.DirectionDebit},
		{"Hello there", models.DirectionDebit},
		{"", models.DirectionDebit},
		{"محاولة شراء بمبلغ AED 50", models.DirectionDebit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.DetectDirection(tt.body), "body %q", tt.body)
	}
}

func TestExtractMerchant(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		body string
		want string
	}{
		{"Rs.500 spent at AMAZON on 12-01-24", "AMAZON"},
		{"Rs.250 paid to Big Bazaar   Store via UPI", "Big Bazaar Store"},
		{"Rs.99 spent at Ab.", UnknownMerchant},
		{"AED 85.36 spent at CAREEM using card XX5566", "CAREEM"},
		{"Rs.40 debited", UnknownMerchant},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ExtractMerchant(tt.body), "body %q", tt.body)
	}
}

func TestDetectInstrumentID(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"masked stars", "Rs.100 spent on card **4321", "4321", true},
		{"card beats upi", "Paid Rs.250 to merchant@okaxis from card XX9876", "9876", true},
		{"upi handle truncated", "Rs.250 paid to verylongmerchantname@okicici", "UPI_verylongmerchantname", true},
		{"upi phone", "Rs.100 sent via UPI to 9876543210", "UPI_3210", true},
		{"account fallback", "Rs.100 withdrawn from a/c 5678", "5678", true},
		{"nothing", "Rs.100 paid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.DetectInstrumentID(tt.body, "VM-BANK")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectInstrumentKind(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		id     string
		body   string
		sender string
		want   models.InstrumentKind
	}{
		{"UPI_john@okaxis", "your credit card", "", models.KindUPI},
		{"1234", "spent on your credit card", "", models.KindCreditCard},
		{"1234", "spent", "SBICREDIT", models.KindCreditCard},
		{"1234", "debit card used", "", models.KindDebitCard},
		{"1234", "paid from wallet", "", models.KindWallet},
		{"1234", "paid", "PAYTM", models.KindWallet},
		{"1234", "debited from your a/c", "", models.KindDebitCard},
		{"1234", "credited to your account", "", models.KindBankAccount},
		{"1234", "hello", "", models.KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.DetectInstrumentKind(tt.id, tt.body, tt.sender), "%q / %q", tt.body, tt.sender)
	}
}

func TestResolveInstitution(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		sender string
		want   string
		ok     bool
	}{
		{"VM-HDFCBK", "HDFC", true},
		{"AD-SBICRD", "SBI", true},
		{"jd-phonepe", "PhonePe", true},
		{"hsbc", "HSBC", true},
		{"ENBD", "Emirates NBD", true},
		{"MYSHOP", "", false},
	}

	for _, tt := range tests {
		got, ok := p.ResolveInstitution(tt.sender)
		assert.Equal(t, tt.ok, ok, tt.sender)
		assert.Equal(t, tt.want, got, tt.sender)
	}
}

func TestBuildLabel(t *testing.T) {
	p := defaultParser(t)

	assert.Equal(t, "AXIS UPI - john@okaxis", p.BuildLabel("UPI_john@okaxis", "AXISBK"))
	assert.Equal(t, "UPI - 3210", p.BuildLabel("UPI_3210", "MYSHOP"))
	assert.Equal(t, "HDFC - XX1234", p.BuildLabel("1234", "HDFCBK"))
	assert.Equal(t, "Card XX1234", p.BuildLabel("1234", "MYSHOP"))
}

func TestIsTransactionMessage(t *testing.T) {
	p := defaultParser(t)

	tests := []struct {
		name   string
		sender string
		body   string
		want   bool
	}{
		{"bank sender with amount", "VM-HDFCBK", "Rs.500 at AMAZON", true},
		{"action keyword with amount", "JX-ORDERS", "Rs.450 spent on groceries", true},
		{"arabic action keyword", "FRIEND", "تم خصم AED 120 من بطاقتك", true},
		{"bank sender without amount", "VM-HDFCBK", "Your statement is ready", false},
		{"amount without signal", "FRIEND", "Lend me Rs.500 tomorrow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsTransactionMessage(tt.sender, tt.body))
		})
	}
}

func TestExactMerchantAlwaysWinsCategory(t *testing.T) {
	p := defaultParser(t)

	res, ok := p.Classify("Rs.199 paid to NETFLIX for renewal", "HDFCBK")
	require.True(t, ok)
	assert.Equal(t, "NETFLIX", res.Merchant)
	assert.Equal(t, "Entertainment", res.Category)
}

func smallRules() *config.Rules {
	return &config.Rules{
		Gatekeeper: config.GatekeeperRules{
			SenderTokens:   []string{"bank"},
			ActionKeywords: []string{"spent"},
		},
		Amount: config.AmountRules{
			Patterns:        []string{`(?P<currency>EUR)\s?(?P<amount>\d+(?:\.\d{1,2})?)`},
			DefaultCurrency: "EUR",
		},
		Direction: config.DirectionRules{
			DebitKeywords:  []string{"spent"},
			CreditKeywords: []string{"received"},
		},
		Merchant:         config.MerchantRules{Patterns: []string{`(?i)\bat\s+([A-Z]+)`}},
		Categories:       []models.CategoryRule{{Name: "Coffee", Keywords: []string{"espresso"}}},
		FallbackCategory: "Other",
		Instrument: config.InstrumentRules{
			CardPatterns:    []string{`card (\d{4})`},
			UPIPatterns:     []string{`([a-z]+@[a-z]+)`},
			AccountPatterns: []string{`acct (\d{4})`},
			Kinds: config.KindRules{
				CreditBody:   []string{"credit card"},
				CreditSender: []string{"credit"},
				DebitBody:    []string{"debit"},
				WalletBody:   []string{"wallet"},
				WalletSender: []string{"pay"},
				AccountBody:  []string{"acct"},
			},
		},
		Institutions: []models.InstitutionRule{{Name: "Demo Bank", SenderTokens: []string{"demo"}}},
	}
}

func TestNew_SmallTables(t *testing.T) {
	p, err := New(smallRules())
	require.NoError(t, err)

	res, ok := p.Classify("EUR 3.50 spent at ESPRESSO with card 7777", "DemoBank")
	require.True(t, ok)
	assert.Equal(t, "ESPRESSO", res.Merchant)
	assert.Equal(t, "Coffee", res.Category)
	assert.Equal(t, "7777", res.InstrumentID)
	assert.Equal(t, "Demo Bank", res.Institution)
	assert.Equal(t, []string{"Coffee", "Other"}, p.Categories())

	_, ok = p.Classify("Rs.500 spent at AMAZON", "HDFCBK")
	assert.False(t, ok)
}

func TestNew_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *config.Rules)
	}{
		{"bad regex", func(r *config.Rules) { r.Merchant.Patterns = append(r.Merchant.Patterns, "(") }},
		{"amount without group", func(r *config.Rules) { r.Amount.Patterns = []string{`EUR (\d+)`} }},
		{"duplicate category", func(r *config.Rules) {
			r.Categories = append(r.Categories, models.CategoryRule{Name: "coffee", Keywords: []string{"latte"}})
		}},
		{"empty sender tokens", func(r *config.Rules) { r.Gatekeeper.SenderTokens = nil }},
		{"duplicate keyword", func(r *config.Rules) { r.Direction.DebitKeywords = []string{"spent", "SPENT"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := smallRules()
			tt.mutate(rules)
			_, err := New(rules)
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := New(nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
