package email

import (
	"context"
	"fmt"
)

type WelcomeData struct {
	FirstName       string
	InstitutionName string
	Role            string
}

func (c *Client) SendWelcomeEmail(ctx context.Context, to string, data WelcomeData) error {
	return c.SendEmail(ctx, to, "Welcome to Edufinance", TemplateWelcome, data)
}

// ReceiptData describes one ledger movement for the guardian of a student.
type ReceiptData struct {
	GuardianName  string
	StudentName   string
	EventName     string
	Kind          string
	Amount        string
	Method        string
	Reference     string
	PaidAmount    string
	Outstanding   string
	RecordedAt    string
	TransactionID string
}

func (c *Client) SendPaymentReceipt(ctx context.Context, to string, data ReceiptData) error {
	subject := fmt.Sprintf("Payment receipt: %s", data.EventName)
	if data.Kind == "refund" {
		subject = fmt.Sprintf("Refund receipt: %s", data.EventName)
	}
	return c.SendEmail(ctx, to, subject, TemplatePaymentReceipt, data)
}
