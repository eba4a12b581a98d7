package notify

import (
	"net/smtp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczak/evergreen/internal/config"
)

func TestSendNotConfigured(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{}, zerolog.Nop())
	err := n.Send("subject", "body")
	assert.Error(t, err)
}

func TestSendBuildsMessage(t *testing.T) {
	cfg := config.EmailConfig{
		Sender:     "alerts@example.com",
		Recipients: []string{"a@example.com", "b@example.com"},
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		Username:   "user",
		Password:   "pass",
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth

	n := NewEmailNotifier(cfg, zerolog.Nop())
	n.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, auth, from, to, msg
		return nil
	}

	require.NoError(t, n.Send("Weekly summary", "all good"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "alerts@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Weekly summary\r\n")
	assert.Contains(t, msg, "To: a@example.com,b@example.com\r\n")
	assert.Contains(t, msg, "\r\n\r\nall good")
}

func TestSendSkipsAuthWithoutCredentials(t *testing.T) {
	cfg := config.EmailConfig{
		Sender:     "alerts@example.com",
		Recipients: []string{"a@example.com"},
		SMTPHost:   "localhost",
		SMTPPort:   25,
	}

	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	n := NewEmailNotifier(cfg, zerolog.Nop())
	n.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = auth
		return nil
	}

	require.NoError(t, n.Send("s", "b"))
	assert.Nil(t, gotAuth)
}
