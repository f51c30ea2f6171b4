// Package sms delivers text messages.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"drobeo/internal/observability"

	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers one text message to an E.164 number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Config selects and configures a Sender.
type Config struct {
	Provider   string
	AccountSID string
	AuthToken  string
	FromNumber string
}

// New returns the Sender named by cfg.Provider ("twilio" or "log").
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "twilio":
		if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
			return nil, fmt.Errorf("sms: twilio requires account sid, auth token and from number")
		}
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		return NewTwilioSender(client.Api, cfg.FromNumber), nil
	case "", "log":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("sms: unsupported provider %q", cfg.Provider)
	}
}

// MessageCreator is the slice of the Twilio API used here.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends through the Twilio Messages API.
type TwilioSender struct {
	api  MessageCreator
	from string
}

func NewTwilioSender(api MessageCreator, from string) *TwilioSender {
	return &TwilioSender{api: api, from: from}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) (err error) {
	_, span := observability.GetTraceLayer().TraceProviderCall(ctx, "twilio", "create_message")
	defer func() { observability.EndSpan(span, err) }()

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Development
// and tests only; message bodies may contain codes.
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// logHistory is how many recent messages a LogSender keeps.
const logHistory = 100

// Message is one message recorded by LogSender.
type Message struct {
	To   string
	Body string
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, body string) error {
	s.mu.Lock()
	if len(s.sent) == logHistory {
		copy(s.sent, s.sent[1:])
		s.sent = s.sent[:logHistory-1]
	}
	s.sent = append(s.sent, Message{To: to, Body: body})
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "sms (log provider)", slog.String("to", to), slog.String("body", body))
	return nil
}

// Sent returns a copy of the most recent messages, oldest first.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// Last returns the most recent message, if any.
func (s *LogSender) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}
