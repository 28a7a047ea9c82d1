package anidb

import (
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	got := string(encodeRequest("FILE", []tag{
		{"size", "1024"},
		{"ed2k", "abc"},
		{"s", "fKq3s"},
	}))
	want := "FILE size=1024&ed2k=abc&s=fKq3s\n"
	if got != want {
		t.Fatalf("encodeRequest = %q, want %q", got, want)
	}
}

func TestEncodeRequestNoTags(t *testing.T) {
	if got := string(encodeRequest("VERSION", nil)); got != "VERSION\n" {
		t.Fatalf("encodeRequest = %q", got)
	}
}

func TestEncodeRequestEscapesValues(t *testing.T) {
	got := string(encodeRequest("AUTH", []tag{{"pass", "a&b\nc"}}))
	want := "AUTH pass=a&amp;b c\n"
	if got != want {
		t.Fatalf("encodeRequest = %q, want %q", got, want)
	}
}

func TestParseReply(t *testing.T) {
	rep, err := parseReply([]byte("220 FILE\n12|1|2|3|03|Foo\n"))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if rep.code != CodeFile || rep.text != "FILE" {
		t.Fatalf("unexpected reply %#v", rep)
	}
	fields, err := rep.dataFields(6)
	if err != nil {
		t.Fatalf("dataFields: %v", err)
	}
	if fields[5] != "Foo" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestParseReplyStatusOnly(t *testing.T) {
	rep, err := parseReply([]byte("203 LOGGED OUT"))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if rep.code != CodeLoggedOut || rep.text != "LOGGED OUT" {
		t.Fatalf("unexpected reply %#v", rep)
	}
	if _, err := rep.dataFields(1); err == nil {
		t.Fatal("expected error for missing data line")
	}
}

func TestParseReplyMalformed(t *testing.T) {
	cases := []string{"", "\n", "HELLO", "20 SHORT", "abcd WORDS"}
	for _, payload := range cases {
		if _, err := parseReply([]byte(payload)); err == nil {
			t.Fatalf("expected parse error for %q", payload)
		}
	}
}

func TestDataFieldsEnforcesMinimum(t *testing.T) {
	rep, err := parseReply([]byte("220 FILE\n12|1|2\n"))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if _, err := rep.dataFields(6); err == nil {
		t.Fatal("expected error for too few fields")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		code ReplyCode
		want replyClass
	}{
		{CodeLoginAccepted, classSuccess},
		{CodeFile, classSuccess},
		{CodeNoSuchFile, classNotFound},
		{CodeMultipleFiles, classNotFound},
		{CodeLoginFirst, classSessionInvalid},
		{CodeInvalidSession, classSessionInvalid},
		{CodeServerBusy, classFlood},
		{CodeTimeout, classFlood},
		{CodeBanned, classAuthFatal},
		{CodeUnknownCommand, classPermanent},
		{ReplyCode(999), classUnknown},
	}
	for _, tc := range cases {
		if got := tc.code.classify(); got != tc.want {
			t.Fatalf("classify(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
