package email

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

func newTestClient(s sender) *Client {
	logger := zerolog.Nop()
	return &Client{emails: s, from: "Edufinance <no-reply@test>", logger: &logger}
}

func TestRender_Welcome(t *testing.T) {
	html, err := Render(TemplateWelcome, WelcomeData{FirstName: "Ana", InstitutionName: "San Jose", Role: "accountant"})
	require.NoError(t, err)

	assert.Contains(t, html, "Welcome, Ana!")
	assert.Contains(t, html, "San Jose")
}

func TestRender_EscapesInput(t *testing.T) {
	html, err := Render(TemplateWelcome, WelcomeData{FirstName: "<script>"})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)
	assert.Error(t, err)
}

func TestSendPaymentReceipt(t *testing.T) {
	fake := &fakeSender{}
	c := newTestClient(fake)

	err := c.SendPaymentReceipt(context.Background(), "parent@example.com", ReceiptData{
		StudentName: "Ana Lopez",
		EventName:   "Graduation 2026",
		Kind:        "payment",
		Amount:      "25.00",
		Method:      "cash",
		PaidAmount:  "25.00",
		Outstanding: "75.00",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)

	sent := fake.sent[0]
	assert.Equal(t, []string{"parent@example.com"}, sent.To)
	assert.Equal(t, "Payment receipt: Graduation 2026", sent.Subject)
	assert.Equal(t, "Edufinance <no-reply@test>", sent.From)
	assert.Contains(t, sent.Html, "75.00")
}

func TestSendRefundReceipt_Subject(t *testing.T) {
	fake := &fakeSender{}
	c := newTestClient(fake)

	require.NoError(t, c.SendPaymentReceipt(context.Background(), "p@example.com", ReceiptData{EventName: "Bingo", Kind: "refund"}))
	assert.Equal(t, "Refund receipt: Bingo", fake.sent[0].Subject)
}

func TestSendEmail_ProviderError(t *testing.T) {
	c := newTestClient(&fakeSender{err: errors.New("rate limited")})

	err := c.SendWelcomeEmail(context.Background(), "x@example.com", WelcomeData{FirstName: "X"})
	assert.ErrorContains(t, err, "failed to send email")
}
