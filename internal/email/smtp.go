// Package email delivers rendered invoices to clients over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/config"
)

// Sender delivers an invoice email with the PDF attached.
type Sender interface {
	SendInvoice(ctx context.Context, quote domain.Quote, pdf []byte, filename string) error
}

// SMTPSender sends through the configured SMTP server via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTP sender from config.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<html><body>
<p>Hi {{.ClientName}},</p>
<p>Please find your quote <strong>{{.Invoice}}</strong> attached. The total comes to <strong>{{.Total}}</strong>.</p>
<p>Reply to this email or call us if anything looks off.</p>
<p>{{.PreparedBy}}</p>
</body></html>`))

type invoiceEmailData struct {
	ClientName string
	Invoice    string
	Total      string
	PreparedBy string
}

// SendInvoice emails the invoice PDF to the client on the quote. The
// quote must carry a client email; callers check before enqueueing.
func (s *SMTPSender) SendInvoice(ctx context.Context, quote domain.Quote, pdf []byte, filename string) error {
	if quote.ClientInfo.Email == "" {
		return apperr.Validation("quote has no client email")
	}

	var body bytes.Buffer
	err := invoiceTemplate.Execute(&body, invoiceEmailData{
		ClientName: quote.ClientName(),
		Invoice:    quote.Invoice,
		Total:      domain.FormatMoney(quote.Total),
		PreparedBy: quote.User.Name,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "render invoice email", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return apperr.Wrap(apperr.KindInternal, "smtp from", err)
	}
	if err := msg.To(quote.ClientInfo.Email); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid client email %q", quote.ClientInfo.Email))
	}
	msg.Subject("Your quote " + quote.Invoice)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())
	msg.AttachReader(filename, bytes.NewReader(pdf))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "smtp client", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "smtp send", err)
	}
	return nil
}
