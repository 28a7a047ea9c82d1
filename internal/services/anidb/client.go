package anidb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"shisho/internal/logging"
	"shisho/internal/services"
)

// Credentials is the login pair the client authenticates with. The session
// derived from it lives only for the process lifetime; the credentials
// themselves are persisted by the store.
type Credentials struct {
	Username string
	Password string
}

// Settings are the protocol parameters for one client instance.
type Settings struct {
	ClientName      string
	ClientVersion   string
	ProtocolVersion int
	// RequestInterval is the minimum spacing between outbound requests.
	RequestInterval time.Duration
	// FloodWait is the cooldown after a server flood reply.
	FloodWait time.Duration
	// RetryAttempts bounds both network-level retries and flood retries.
	RetryAttempts int
	// RetryBackoff is the initial delay between network retries; it doubles
	// per attempt.
	RetryBackoff time.Duration
}

func (s *Settings) applyDefaults() {
	if s.ClientName == "" {
		s.ClientName = "shisho"
	}
	if s.ClientVersion == "" {
		s.ClientVersion = "2"
	}
	if s.ProtocolVersion == 0 {
		s.ProtocolVersion = 3
	}
	if s.RequestInterval <= 0 {
		s.RequestInterval = 3 * time.Second
	}
	if s.FloodWait <= 0 {
		s.FloodWait = 30 * time.Second
	}
	if s.RetryAttempts <= 0 {
		s.RetryAttempts = 3
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = 5 * time.Second
	}
}

// Clock abstracts time so rate-limit behaviour is testable without real
// delays.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the wall clock (used in tests).
func WithClock(clock Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger attaches a logger for protocol traffic.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.WithComponent(logger, "anidb")
		}
	}
}

// Client drives an authenticated AniDB UDP session. All outbound requests
// are serialized: the server enforces a global per-client rate limit, so
// concurrent in-flight requests would be a correctness bug, not just waste.
type Client struct {
	mu        sync.Mutex
	transport Transport
	clock     Clock
	logger    *slog.Logger
	settings  Settings
	creds     Credentials

	session  string
	lastSend time.Time
}

// New constructs a client over the given transport. The session is
// established lazily on the first request.
func New(settings Settings, creds Credentials, transport Transport, opts ...Option) *Client {
	settings.applyDefaults()
	client := &Client{
		transport: transport,
		clock:     systemClock{},
		logger:    logging.NewNop(),
		settings:  settings,
		creds:     creds,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Login authenticates eagerly. Requests log in on demand, so this is only
// needed to validate credentials up front.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != "" {
		return nil
	}
	return c.loginLocked(ctx)
}

// Close logs out of any live session and releases the transport.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != "" {
		rep, err := c.exchangeLocked(ctx, "LOGOUT", []tag{{"s", c.session}})
		if err != nil {
			c.logger.Warn("logout failed", logging.Error(err))
		} else if rep.code != CodeLoggedOut {
			c.logger.Warn("unexpected logout reply",
				logging.Int(logging.FieldCode, int(rep.code)),
				logging.String("text", rep.text))
		}
		c.session = ""
	}
	return c.transport.Close()
}

// request issues an authenticated command, transparently handling login,
// session expiry (one automatic re-login), and flood cooldowns. The returned
// reply is success or not-found class; everything else surfaces as an error.
func (c *Client) request(ctx context.Context, command string, tags []tag) (reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reloggedIn := false
	floods := 0
	for {
		if c.session == "" {
			if err := c.loginLocked(ctx); err != nil {
				return reply{}, err
			}
		}

		full := append(slices.Clone(tags), tag{"s", c.session})
		rep, err := c.exchangeLocked(ctx, command, full)
		if err != nil {
			return reply{}, err
		}

		switch rep.code.classify() {
		case classSessionInvalid:
			c.session = ""
			if reloggedIn {
				return reply{}, services.Wrap(services.ErrAuth, "anidb", command, "session rejected again after re-login", nil)
			}
			reloggedIn = true
			c.logger.Info("session expired; re-authenticating", logging.String(logging.FieldCommand, command))
		case classFlood:
			floods++
			if floods > c.settings.RetryAttempts {
				return reply{}, services.Wrap(services.ErrNetwork, "anidb", command,
					fmt.Sprintf("server flood protection persisted through %d retries", floods-1), nil)
			}
			c.logger.Warn("server flood response; backing off",
				logging.Int(logging.FieldCode, int(rep.code)),
				logging.Duration("wait", c.settings.FloodWait))
			if err := c.clock.Sleep(ctx, c.settings.FloodWait); err != nil {
				return reply{}, err
			}
		case classAuthFatal:
			return reply{}, services.Wrap(services.ErrAuth, "anidb", command,
				fmt.Sprintf("%d %s", rep.code, rep.text), nil)
		case classPermanent, classUnknown:
			return reply{}, services.Wrap(services.ErrProtocol, "anidb", command,
				fmt.Sprintf("server rejected request: %d %s", rep.code, rep.text), nil)
		default:
			return rep, nil
		}
	}
}

func (c *Client) loginLocked(ctx context.Context) error {
	tags := []tag{
		{"user", c.creds.Username},
		{"pass", c.creds.Password},
		{"protover", strconv.Itoa(c.settings.ProtocolVersion)},
		{"client", c.settings.ClientName},
		{"clientver", c.settings.ClientVersion},
		{"enc", "UTF-8"},
	}

	floods := 0
	for {
		rep, err := c.exchangeLocked(ctx, "AUTH", tags)
		if err != nil {
			return err
		}

		switch rep.code {
		case CodeLoginAccepted, CodeLoginAcceptedNewVersion:
			session := firstField(rep.text)
			if session == "" {
				return services.Wrap(services.ErrProtocol, "anidb", "login", "login reply carries no session token", nil)
			}
			c.session = session
			c.logger.Info("logged in")
			return nil
		}

		switch rep.code.classify() {
		case classFlood:
			floods++
			if floods > c.settings.RetryAttempts {
				return services.Wrap(services.ErrNetwork, "anidb", "login", "server flood protection persists", nil)
			}
			if err := c.clock.Sleep(ctx, c.settings.FloodWait); err != nil {
				return err
			}
		case classAuthFatal:
			return services.Wrap(services.ErrAuth, "anidb", "login",
				fmt.Sprintf("%d %s", rep.code, rep.text), nil)
		default:
			return services.Wrap(services.ErrProtocol, "anidb", "login",
				fmt.Sprintf("unexpected login reply: %d %s", rep.code, rep.text), nil)
		}
	}
}

// exchangeLocked sends one datagram and decodes the reply, retrying
// network-level failures with bounded exponential backoff. Callers hold the
// client mutex.
func (c *Client) exchangeLocked(ctx context.Context, command string, tags []tag) (reply, error) {
	payload := encodeRequest(command, tags)
	backoff := c.settings.RetryBackoff

	var lastErr error
	for attempt := 0; attempt < c.settings.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.clock.Sleep(ctx, backoff); err != nil {
				return reply{}, err
			}
			backoff *= 2
		}
		if err := c.paceLocked(ctx); err != nil {
			return reply{}, err
		}

		c.logger.Debug("sending command", logging.String(logging.FieldCommand, command))
		data, err := c.transport.Exchange(ctx, payload)
		c.lastSend = c.clock.Now()
		if err != nil {
			if ctx.Err() != nil {
				return reply{}, ctx.Err()
			}
			lastErr = err
			c.logger.Warn("exchange failed",
				logging.String(logging.FieldCommand, command),
				logging.Int("attempt", attempt+1),
				logging.Error(err))
			continue
		}

		rep, perr := parseReply(data)
		if perr != nil {
			return reply{}, services.Wrap(services.ErrProtocol, "anidb", command, "decode response", perr)
		}
		c.logger.Debug("received reply",
			logging.String(logging.FieldCommand, command),
			logging.Int(logging.FieldCode, int(rep.code)))
		return rep, nil
	}

	return reply{}, services.Wrap(services.ErrNetwork, "anidb", command,
		fmt.Sprintf("no response after %d attempts", c.settings.RetryAttempts), lastErr)
}

// paceLocked blocks until the minimum inter-request interval has elapsed.
func (c *Client) paceLocked(ctx context.Context) error {
	if c.lastSend.IsZero() {
		return nil
	}
	elapsed := c.clock.Now().Sub(c.lastSend)
	if wait := c.settings.RequestInterval - elapsed; wait > 0 {
		return c.clock.Sleep(ctx, wait)
	}
	return nil
}

func firstField(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
