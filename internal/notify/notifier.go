package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Template names understood by every Notifier.
const (
	TemplateBookingConfirmation = "booking_confirmation"
	TemplateStatusChanged       = "appointment_status_changed"
)

// Message is a customer notification. Data is template-specific.
type Message struct {
	To       string                 `json:"to"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data"`
}

// Notifier delivers messages. Delivery is best effort; callers log and
// discard errors.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Subject returns the mail subject for the message's template.
func (m Message) Subject() string {
	switch m.Template {
	case TemplateBookingConfirmation:
		return fmt.Sprintf("Booking confirmed: %v", m.Data["job_order_number"])
	case TemplateStatusChanged:
		return fmt.Sprintf("Appointment %v is now %v", m.Data["job_order_number"], m.Data["status"])
	}
	return "Appointment update"
}

// Body renders the data as "key: value" lines in key order.
func (m Message) Body() string {
	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(m.Subject())
	b.WriteString("\r\n\r\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\r\n", k, m.Data[k])
	}
	return b.String()
}

// LogNotifier only records messages. Used when no transport is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.WithFields(logrus.Fields{
		"to":       msg.To,
		"template": msg.Template,
		"subject":  msg.Subject(),
	}).Info("notification queued")
	return nil
}
