package mailer

import (
	"context"
	"embed"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-errors"
	"github.com/jhillyerd/enmime"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultProductName = "vIAbilize"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Logger is the logging surface the mailer needs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds what the SMTP mailer needs to reach the relay
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	Language string
	// CodeTTL is shown to the recipient as the code validity window.
	// Zero means codes do not expire.
	CodeTTL time.Duration
}

// Address returns the host:port pair of the relay
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Option configures an SMTPMailer
type Option func(*SMTPMailer)

// WithSender replaces the SMTP transport
func WithSender(sender enmime.Sender) Option {
	return func(m *SMTPMailer) {
		if sender != nil {
			m.sender = sender
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger Logger) Option {
	return func(m *SMTPMailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// SMTPMailer renders localized messages and delivers them over SMTP
type SMTPMailer struct {
	from         string
	fromName     string
	codeTTL      time.Duration
	tag          language.Tag
	printer      *message.Printer
	sender       enmime.Sender
	verification *pongo2.Template
	welcome      *pongo2.Template
	logger       Logger
}

// NewSMTPMailer builds a mailer for the given relay settings
func NewSMTPMailer(cfg Config, opts ...Option) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, errors.New("sender email is required", errors.CategoryBadInput)
	}

	verification, err := loadTemplate("templates/verification.html")
	if err != nil {
		return nil, err
	}

	welcome, err := loadTemplate("templates/welcome.html")
	if err != nil {
		return nil, err
	}

	fromName := cfg.FromName
	if fromName == "" {
		fromName = DefaultProductName
	}

	codeTTL := max(cfg.CodeTTL, 0)

	tag := ResolveTag(cfg.Language)
	m := &SMTPMailer{
		from:         cfg.Username,
		fromName:     fromName,
		codeTTL:      codeTTL,
		tag:          tag,
		printer:      message.NewPrinter(tag),
		verification: verification,
		welcome:      welcome,
		logger:       nopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.sender == nil {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		m.sender = enmime.NewSMTP(cfg.Address(), auth)
	}

	return m, nil
}

func loadTemplate(name string) (*pongo2.Template, error) {
	raw, err := templatesFS.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "read mail template "+name)
	}
	tpl, err := pongo2.FromBytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "parse mail template "+name)
	}
	return tpl, nil
}

// SendVerificationCode mails the activation code to the address
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := m.printer
	minutes := int(m.codeTTL / time.Minute)

	validity := p.Sprintf(keyVerificationNoExpiry)
	text := p.Sprintf(keyVerificationTextNoExpiry, m.fromName, code)
	if m.codeTTL > 0 {
		validity = p.Sprintf(keyVerificationValidity, minutes)
		text = p.Sprintf(keyVerificationText, m.fromName, code, minutes)
	}

	html, err := m.verification.Execute(pongo2.Context{
		"greeting":   p.Sprintf(keyVerificationGreeting),
		"intro":      p.Sprintf(keyVerificationIntro, m.fromName),
		"code_label": p.Sprintf(keyVerificationCode),
		"code":       code,
		"notes": []string{
			validity,
			p.Sprintf(keyVerificationIgnore),
			p.Sprintf(keyVerificationMistake),
		},
		"thanks": p.Sprintf(keySignatureThanks),
		"team":   p.Sprintf(keySignatureTeam, m.fromName),
	})
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, errors.CategoryInternal, "render verification mail"))
	}

	return m.send(email, p.Sprintf(keyVerificationSubject), text, html)
}

// SendWelcome mails the onboarding message to a freshly verified address
func (m *SMTPMailer) SendWelcome(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := m.printer
	subject := p.Sprintf(keyWelcomeSubject, m.fromName)

	html, err := m.welcome.Execute(pongo2.Context{
		"subject":  subject,
		"greeting": p.Sprintf(keyWelcomeGreeting),
		"intro":    p.Sprintf(keyWelcomeIntro, m.fromName),
		"summary":  p.Sprintf(keyWelcomeSummary, m.fromName),
		"features": []string{
			p.Sprintf(keyWelcomeFeatureTours),
			p.Sprintf(keyWelcomeFeatureModels),
			p.Sprintf(keyWelcomeFeatureNotes),
			p.Sprintf(keyWelcomeFeatureTeams),
		},
		"support": p.Sprintf(keyWelcomeSupport),
		"closing": p.Sprintf(keyWelcomeClosing),
		"team":    p.Sprintf(keySignatureTeam, m.fromName),
	})
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, errors.CategoryInternal, "render welcome mail"))
	}

	text := p.Sprintf(keyWelcomeText, m.fromName)
	return m.send(email, subject, text, html)
}

func (m *SMTPMailer) send(to, subject, text, html string) error {
	err := enmime.Builder().
		From(m.fromName, m.from).
		To("", to).
		Subject(subject).
		Text([]byte(text)).
		HTML([]byte(html)).
		Send(m.sender)
	if err == nil {
		m.logger.Debug("mail sent", "to", to, "subject", subject)
		return nil
	}

	wrapped := errors.Wrap(err, errors.CategoryOperation, "send mail")
	if isPermanent(err) {
		return backoff.Permanent(wrapped)
	}
	return wrapped
}

// isPermanent reports SMTP replies that a retry cannot fix, such as
// rejected credentials or an unknown mailbox.
func isPermanent(err error) bool {
	var protoErr *textproto.Error
	if !errors.As(err, &protoErr) {
		return false
	}
	return protoErr.Code >= 500
}

// LogMailer logs messages instead of delivering them
type LogMailer struct {
	logger Logger
}

// NewLogMailer returns a mailer that only logs
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LogMailer{logger: logger}
}

// SendVerificationCode logs the code
func (m *LogMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	m.logger.Info("verification code", "email", email, "code", code)
	return nil
}

// SendWelcome logs the welcome
func (m *LogMailer) SendWelcome(ctx context.Context, email string) error {
	m.logger.Info("welcome mail", "email", email)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Language returns the tag the mailer renders with
func (m *SMTPMailer) Language() language.Tag {
	return m.tag
}
