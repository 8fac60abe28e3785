package branch

import (
	"fmt"

	"julferiin-ops/internal/notify"
)

// Default director messages used when the caller supplies none.
const (
	DefaultAlertMessage  = "Critical delay in sending the Daily Report. Immediate action required."
	DefaultVerifyMessage = "Check operational compliance of the outgoing box."
	ReportMessage        = "Consolidated report generated."
)

// Director raises group-level notifications about branches.
type Director struct {
	pub notify.Publisher
}

// NewDirector returns a Director publishing to pub.
func NewDirector(pub notify.Publisher) *Director {
	return &Director{pub: pub}
}

// Alert raises a critical error notification for b.
func (d *Director) Alert(b Branch, message string) notify.Record {
	if message == "" {
		message = DefaultAlertMessage
	}
	return d.pub.Add(fmt.Sprintf("CRITICAL ALERT: %s", b.Label()), message, notify.KindError)
}

// Verify asks b to check something, as a warning notification.
func (d *Director) Verify(b Branch, message string) notify.Record {
	if message == "" {
		message = DefaultVerifyMessage
	}
	return d.pub.Add(fmt.Sprintf("VERIFICATION: %s", b.Label()), message, notify.KindWarning)
}

// Report announces that the consolidated report for b was generated.
func (d *Director) Report(b Branch) notify.Record {
	return d.pub.Add(b.Label(), ReportMessage, notify.KindSuccess)
}
