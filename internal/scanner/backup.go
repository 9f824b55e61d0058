// Package scanner feeds messages from an SMS backup through the classifier
// and hands the resulting transactions to a store.
package scanner

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"sms-classifier/internal/models"
)

// ReadOptions filter the messages taken from a backup
type ReadOptions struct {
	Sender string
	From   time.Time
	Limit  int
}

// ReadBackup reads an SMS Backup & Restore XML file
func ReadBackup(path string, opts ReadOptions) ([]models.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	defer f.Close()

	return ParseBackup(f, opts)
}

// ParseBackup decodes a backup document and returns its messages newest
// first, after the sender, date and limit filters. Messages with a
// malformed date or an empty sender or body are dropped.
func ParseBackup(r io.Reader, opts ReadOptions) ([]models.Message, error) {
	var backup models.SMSBackup
	if err := xml.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}

	messages := make([]models.Message, 0, len(backup.SMS))
	for _, sms := range backup.SMS {
		if strings.TrimSpace(sms.Address) == "" || strings.TrimSpace(sms.Body) == "" {
			continue
		}
		if opts.Sender != "" && sms.Address != opts.Sender {
			continue
		}

		dateMs, err := strconv.ParseInt(sms.Date, 10, 64)
		if err != nil {
			continue
		}
		received := time.UnixMilli(dateMs)

		if !opts.From.IsZero() && received.Before(opts.From) {
			continue
		}

		messages = append(messages, models.Message{
			Sender:     sms.Address,
			Body:       sms.Body,
			ReceivedAt: received,
		})
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.After(messages[j].ReceivedAt)
	})
	if opts.Limit > 0 && len(messages) > opts.Limit {
		messages = messages[:opts.Limit]
	}
	return messages, nil
}

// ParseDate parses a YYYY-MM-DD date filter. An empty string is the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	return t, nil
}

// Senders returns the distinct sender ids of msgs, sorted
func Senders(msgs []models.Message) []string {
	seen := make(map[string]bool)
	var senders []string
	for _, msg := range msgs {
		if msg.Sender == "" || seen[msg.Sender] {
			continue
		}
		seen[msg.Sender] = true
		senders = append(senders, msg.Sender)
	}
	sort.Strings(senders)
	return senders
}
