package anidb_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shisho/internal/media"
	"shisho/internal/services"
	"shisho/internal/services/anidb"
	"shisho/internal/testsupport"
)

const (
	authOK    = "200 fKq3s LOGIN ACCEPTED"
	fileFound = "220 FILE\n12|5|7|9|03|Foo"
)

var testIdentity = media.Identity{Hash: "31d6cfe0d16ae931b73c59d7e0c089c0", SizeBytes: 20971520}

func newTestClient(transport *testsupport.ScriptTransport, clock *testsupport.ManualClock) *anidb.Client {
	settings := anidb.Settings{
		RequestInterval: 3 * time.Second,
		FloodWait:       30 * time.Second,
		RetryAttempts:   3,
		RetryBackoff:    time.Second,
	}
	creds := anidb.Credentials{Username: "alice", Password: "s3cret"}
	return anidb.New(settings, creds, transport, anidb.WithClock(clock))
}

func TestLoginParsesSessionToken(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{testsupport.Reply(authOK)}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(transport.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(transport.Requests))
	}
	req := transport.Requests[0]
	if !strings.HasPrefix(req, "AUTH ") {
		t.Fatalf("expected AUTH request, got %q", req)
	}
	for _, part := range []string{"user=alice", "pass=s3cret", "protover=3", "enc=UTF-8"} {
		if !strings.Contains(req, part) {
			t.Fatalf("AUTH request missing %q: %q", part, req)
		}
	}
}

func TestRequestLogsInOnDemandAndCarriesSession(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply(fileFound),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	ep, err := client.FileByIdentity(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("FileByIdentity: %v", err)
	}
	want := media.Episode{EpisodeID: 7, Number: "03", Name: "Foo", AnimeID: 5, GroupID: 9}
	if ep != want {
		t.Fatalf("episode = %#v, want %#v", ep, want)
	}

	if len(transport.Requests) != 2 {
		t.Fatalf("expected AUTH then FILE, got %v", transport.Requests)
	}
	fileReq := transport.Requests[1]
	if !strings.HasPrefix(fileReq, "FILE ") {
		t.Fatalf("expected FILE request, got %q", fileReq)
	}
	for _, part := range []string{"size=20971520", "ed2k=" + testIdentity.Hash, "s=fKq3s"} {
		if !strings.Contains(fileReq, part) {
			t.Fatalf("FILE request missing %q: %q", part, fileReq)
		}
	}
}

func TestRateLimitSpacing(t *testing.T) {
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	transport := &testsupport.ScriptTransport{
		NowFunc: clock.Now,
		Replies: []testsupport.ScriptReply{
			testsupport.Reply(authOK),
			testsupport.Reply(fileFound),
			testsupport.Reply(fileFound),
			testsupport.Reply(fileFound),
		},
	}
	client := newTestClient(transport, clock)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.FileByIdentity(ctx, testIdentity); err != nil {
			t.Fatalf("FileByIdentity #%d: %v", i+1, err)
		}
	}

	if len(transport.SendTimes) != 4 {
		t.Fatalf("expected 4 sends, got %d", len(transport.SendTimes))
	}
	for i := 1; i < len(transport.SendTimes); i++ {
		gap := transport.SendTimes[i].Sub(transport.SendTimes[i-1])
		if gap < 3*time.Second {
			t.Fatalf("requests %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestSessionRecoveryReloginsOnce(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("506 INVALID SESSION"),
		testsupport.Reply("200 newSess LOGIN ACCEPTED"),
		testsupport.Reply(fileFound),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	if _, err := client.FileByIdentity(context.Background(), testIdentity); err != nil {
		t.Fatalf("FileByIdentity after re-login: %v", err)
	}
	if len(transport.Requests) != 4 {
		t.Fatalf("expected AUTH, FILE, AUTH, FILE; got %v", transport.Requests)
	}
	if !strings.Contains(transport.Requests[3], "s=newSess") {
		t.Fatalf("retried request does not carry new session: %q", transport.Requests[3])
	}
}

func TestSecondSessionRejectionIsAuthFailure(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("506 INVALID SESSION"),
		testsupport.Reply(authOK),
		testsupport.Reply("506 INVALID SESSION"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	_, err := client.FileByIdentity(context.Background(), testIdentity)
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth after second session rejection, got %v", err)
	}
	if len(transport.Requests) != 4 {
		t.Fatalf("expected exactly one re-login, got requests %v", transport.Requests)
	}
}

func TestFloodResponseBacksOffAndRetries(t *testing.T) {
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("602 SERVER BUSY"),
		testsupport.Reply(fileFound),
	}}
	client := newTestClient(transport, clock)

	if _, err := client.FileByIdentity(context.Background(), testIdentity); err != nil {
		t.Fatalf("FileByIdentity: %v", err)
	}

	var sawFloodWait bool
	for _, d := range clock.Slept {
		if d == 30*time.Second {
			sawFloodWait = true
		}
	}
	if !sawFloodWait {
		t.Fatalf("expected a 30s flood cooldown, slept %v", clock.Slept)
	}
}

func TestNetworkFailureRetriesThenSurfaces(t *testing.T) {
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	netErr := errors.New("i/o timeout")
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.ReplyErr(netErr),
		testsupport.ReplyErr(netErr),
		testsupport.ReplyErr(netErr),
	}}
	client := newTestClient(transport, clock)

	_, err := client.FileByIdentity(context.Background(), testIdentity)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected ErrNetwork after retry ceiling, got %v", err)
	}
	// AUTH plus three FILE attempts.
	if len(transport.Requests) != 4 {
		t.Fatalf("expected attempt ceiling of 3, got requests %v", transport.Requests)
	}
}

func TestNetworkFailureRecoversWithinCeiling(t *testing.T) {
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.ReplyErr(errors.New("connection reset")),
		testsupport.Reply(fileFound),
	}}
	client := newTestClient(transport, clock)

	if _, err := client.FileByIdentity(context.Background(), testIdentity); err != nil {
		t.Fatalf("expected recovery within retry ceiling, got %v", err)
	}
}

func TestStrictDecodingRejectsTruncatedReply(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("220 FILE\n12|5|7"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	_, err := client.FileByIdentity(context.Background(), testIdentity)
	if !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected ErrProtocol for truncated reply, got %v", err)
	}
}

func TestGarbageReplyIsProtocolFailure(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("!!! not a reply"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	_, err := client.FileByIdentity(context.Background(), testIdentity)
	if !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected ErrProtocol for garbage reply, got %v", err)
	}
}

func TestUnknownFileIsUnidentified(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("320 NO SUCH FILE"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	_, err := client.FileByIdentity(context.Background(), testIdentity)
	if !errors.Is(err, services.ErrUnidentified) {
		t.Fatalf("expected ErrUnidentified, got %v", err)
	}
}

func TestBadCredentialsAreFatal(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply("500 LOGIN FAILED"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	err := client.Login(context.Background())
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth for failed login, got %v", err)
	}
}

func TestAnimeAndGroupLookups(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("230 ANIME\n5|Bar Anime"),
		testsupport.Reply("250 GROUP\n9|823|42|12|34|Baz|BZ"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)
	ctx := context.Background()

	anime, err := client.AnimeByID(ctx, 5)
	if err != nil {
		t.Fatalf("AnimeByID: %v", err)
	}
	if anime != (media.Anime{AnimeID: 5, TitleRomaji: "Bar Anime"}) {
		t.Fatalf("unexpected anime %#v", anime)
	}
	animeReq := transport.Requests[1]
	// The mask must request exactly the aid|romaji pair the parser expects:
	// byte 1 bit 7 is the aid, byte 2 bit 7 the romaji title.
	for _, part := range []string{"aid=5", "amask=80800000000000"} {
		if !strings.Contains(animeReq, part) {
			t.Fatalf("ANIME request missing %q: %q", part, animeReq)
		}
	}

	group, err := client.GroupByID(ctx, 9)
	if err != nil {
		t.Fatalf("GroupByID: %v", err)
	}
	if group != (media.Group{GroupID: 9, Name: "Baz"}) {
		t.Fatalf("unexpected group %#v", group)
	}
}

func TestCloseLogsOut(t *testing.T) {
	transport := &testsupport.ScriptTransport{Replies: []testsupport.ScriptReply{
		testsupport.Reply(authOK),
		testsupport.Reply("203 LOGGED OUT"),
	}}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := client.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(transport.Requests) != 2 || !strings.HasPrefix(transport.Requests[1], "LOGOUT ") {
		t.Fatalf("expected LOGOUT on close, got %v", transport.Requests)
	}
	if !transport.Closed {
		t.Fatal("transport not closed")
	}
}

func TestCloseWithoutSessionSkipsLogout(t *testing.T) {
	transport := &testsupport.ScriptTransport{}
	clock := testsupport.NewManualClock(time.Unix(0, 0))
	client := newTestClient(transport, clock)

	if err := client.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(transport.Requests) != 0 {
		t.Fatalf("unexpected requests %v", transport.Requests)
	}
	if !transport.Closed {
		t.Fatal("transport not closed")
	}
}
