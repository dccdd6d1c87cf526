package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/domain"

	"github.com/wneessen/go-mail"
)

// DraftProposal is everything needed to compose the order-list email sent to
// a supplier when a draft is dispatched.
type DraftProposal struct {
	DraftID       string
	SupplierName  string
	SupplierEmail string
	SenderName    string
	CreatedAt     time.Time
	Items         []domain.DraftItemDetail
}

// Mailer hands a draft proposal to the supplier. Implementations must only
// return nil once the message has been accepted by the outbound relay; the
// caller persists the draft status flip strictly after that.
type Mailer interface {
	SendDraftProposal(ctx context.Context, proposal DraftProposal) error
}

// Config holds SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends draft proposals over an authenticated SMTP relay.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer creates a Mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendDraftProposal(ctx context.Context, proposal DraftProposal) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(proposal.SupplierEmail); err != nil {
		return fmt.Errorf("invalid supplier address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Order List from %s", proposal.SenderName))
	msg.SetBodyString(mail.TypeTextPlain, textBody(proposal))
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(proposal))

	client, err := mail.NewClient(
		m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send draft proposal: %w", err)
	}

	return nil
}

func textBody(p DraftProposal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", p.SupplierName)
	fmt.Fprintf(&b, "You have received a purchase draft from %s.\n\n", p.SenderName)
	fmt.Fprintf(&b, "Draft ID: %s\n", p.DraftID)
	fmt.Fprintf(&b, "Created On: %s\n\n", p.CreatedAt.Format(time.RFC1123))
	b.WriteString("Items:\n")
	for _, item := range p.Items {
		fmt.Fprintf(&b, "- %s: %d\n", item.ProductName, item.Quantity)
	}
	fmt.Fprintf(&b, "\nPlease review this draft at your earliest convenience.\n\nThank you,\n%s\n", p.SenderName)
	return b.String()
}

func htmlBody(p DraftProposal) string {
	var rows strings.Builder
	for _, item := range p.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td></tr>", item.ProductName, item.Quantity)
	}

	return fmt.Sprintf(`<div>
<h2>Order List</h2>
<p>Hello <strong>%s</strong>,</p>
<p>You have received an order list from <strong>%s</strong>.</p>
<p><strong>Created On:</strong> %s</p>
<h3>Items:</h3>
<table border="1" cellpadding="6" cellspacing="0">
<thead><tr><th>Product</th><th>Quantity</th></tr></thead>
<tbody>%s</tbody>
</table>
<p>This is the list of products we would like to order from you.</p>
</div>`, p.SupplierName, p.SenderName, p.CreatedAt.Format(time.RFC1123), rows.String())
}
