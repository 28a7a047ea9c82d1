package testsupport

import (
	"context"
	"errors"
	"time"
)

// ScriptReply is one canned transport response.
type ScriptReply struct {
	Data []byte
	Err  error
}

// Reply builds a successful canned response from the wire text.
func Reply(text string) ScriptReply {
	return ScriptReply{Data: []byte(text)}
}

// ReplyErr builds a failed exchange (network-level error).
func ReplyErr(err error) ScriptReply {
	return ScriptReply{Err: err}
}

// ScriptTransport satisfies the AniDB transport contract with a scripted
// sequence of replies, recording every outbound request for assertions.
type ScriptTransport struct {
	Replies  []ScriptReply
	Requests []string
	// NowFunc, when set, timestamps each exchange; used together with a
	// ManualClock to verify request spacing.
	NowFunc   func() time.Time
	SendTimes []time.Time
	Closed    bool
}

func (t *ScriptTransport) Exchange(_ context.Context, payload []byte) ([]byte, error) {
	t.Requests = append(t.Requests, string(payload))
	if t.NowFunc != nil {
		t.SendTimes = append(t.SendTimes, t.NowFunc())
	}
	if len(t.Replies) == 0 {
		return nil, errors.New("script transport exhausted")
	}
	next := t.Replies[0]
	t.Replies = t.Replies[1:]
	return next.Data, next.Err
}

func (t *ScriptTransport) Close() error {
	t.Closed = true
	return nil
}

// ManualClock is a deterministic clock whose Sleep advances time instead of
// blocking.
type ManualClock struct {
	now   time.Time
	Slept []time.Duration
}

// NewManualClock starts a clock at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if d > 0 {
		c.Slept = append(c.Slept, d)
		c.now = c.now.Add(d)
	}
	return ctx.Err()
}

// Advance moves the clock forward without recording a sleep.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
