// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
	"unicode"
)

// CallRecord represents a single call fetched from the Vapi API or read back
// from the local cache. The ID is assigned by the remote system and is the
// primary key everywhere; re-observing an ID overwrites every other field.
type CallRecord struct {
	Start         time.Time
	End           time.Time
	CostBreakdown map[string]float64
	ID            string
	Caller        string
	Transcript    string
	Summary       string
	EndedReason   string
	Cost          float64
}

// Duration returns how long the call lasted. A record whose remote source
// omitted an end time carries End == Start, so the duration is zero.
func (c *CallRecord) Duration() time.Duration {
	d := c.End.Sub(c.Start)
	if d < 0 {
		return 0
	}
	return d
}

// LengthInSeconds returns the call duration in whole seconds.
func (c *CallRecord) LengthInSeconds() float64 {
	return c.Duration().Seconds()
}

// FormattedCaller returns the caller number in (xxx)xxx-xxxx display form.
func (c *CallRecord) FormattedCaller() string {
	return FormatPhoneNumber(c.Caller)
}

// ShortID returns a truncated id suitable for narrow table columns.
func (c *CallRecord) ShortID() string {
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

// MaskedCaller returns the caller number with all but the last four digits
// hidden, for screen sharing and screenshots.
func (c *CallRecord) MaskedCaller() string {
	return MaskPhoneNumber(c.Caller)
}

// FormatPhoneNumber renders the last ten digits of a phone number as
// (xxx)xxx-xxxx. Values with fewer than ten digits are returned unchanged.
func FormatPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 {
		return phone
	}
	last := d[len(d)-10:]
	return "(" + last[:3] + ")" + last[3:6] + "-" + last[6:]
}

// MaskPhoneNumber hides all but the last four digits of a phone number.
func MaskPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return "(***)***-****"
	}
	return "(***)***-" + d[len(d)-4:]
}
