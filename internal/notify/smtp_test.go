package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

func newTestSMTP(t *testing.T, sender *fakeSender) *SMTPNotifier {
	t.Helper()
	cfg := DefaultSMTPConfig()
	cfg.Host = "smtp.example.com"
	cfg.From = "billing@example.com"

	n, err := NewSMTPNotifier(cfg)
	require.NoError(t, err)
	n.dial = func(SMTPConfig) (mailSender, error) { return sender, nil }
	return n
}

func TestSMTPNotifier_Notify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chargeback_October_2026.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx bytes"), 0o600))

	sender := &fakeSender{}
	n := newTestSMTP(t, sender)
	assert.Equal(t, ChannelSMTP, n.Name())

	err := n.Notify(context.Background(), Notification{
		ReportPath: path,
		Subject:    "Chargeback Report for October 2026",
		Body:       "Please find the attached work order report.",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	var buf bytes.Buffer
	_, err = sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Chargeback Report for October 2026")
	assert.Regexp(t, `(?m)^To: .*billing@example\.com`, raw, "recipient falls back to the sender's mailbox")
	assert.Contains(t, raw, "Please find the attached work order report.")
	assert.Contains(t, raw, "Chargeback_October_2026.xlsx")
}

func TestSMTPNotifier_SendFailure(t *testing.T) {
	n := newTestSMTP(t, &fakeSender{err: errors.New("connection refused")})

	err := n.Notify(context.Background(), Notification{Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "failed to send mail via smtp.example.com")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPNotifier_InvalidConfig(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{})
	assert.ErrorContains(t, err, "invalid smtp config")
}

func TestTLSPolicy(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicy(""))
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("mandatory"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy("Opportunistic"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
}
