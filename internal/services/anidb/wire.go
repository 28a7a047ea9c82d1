package anidb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// tag is one key=value pair in a request. Tags are kept ordered so encoded
// requests are deterministic.
type tag struct {
	key   string
	value string
}

// valueEscaper protects the tag separator and line ending inside values, per
// the AniDB UDP content encoding.
var valueEscaper = strings.NewReplacer("&", "&amp;", "\n", " ")

// encodeRequest renders "COMMAND k1=v1&k2=v2\n" as sent on the wire.
func encodeRequest(command string, tags []tag) []byte {
	var b strings.Builder
	b.WriteString(command)
	for i, t := range tags {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(t.key)
		b.WriteByte('=')
		b.WriteString(valueEscaper.Replace(t.value))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// reply is a decoded server response: the status line plus any data lines.
type reply struct {
	code ReplyCode
	text string
	data []string
}

// parseReply decodes a datagram strictly; anything that does not carry a
// numeric status line is rejected rather than partially decoded.
func parseReply(payload []byte) (reply, error) {
	trimmed := strings.TrimRight(string(payload), "\r\n \t")
	if trimmed == "" {
		return reply{}, errors.New("empty response")
	}

	lines := strings.Split(trimmed, "\n")
	head := strings.TrimSpace(lines[0])
	codeStr, text, _ := strings.Cut(head, " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil || len(codeStr) != 3 {
		return reply{}, fmt.Errorf("malformed status line %q", head)
	}

	data := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if line = strings.TrimRight(line, "\r"); line != "" {
			data = append(data, line)
		}
	}

	return reply{code: ReplyCode(code), text: strings.TrimSpace(text), data: data}, nil
}

// dataFields splits the first data line on '|' and enforces a minimum field
// count. Truncated payloads fail decoding instead of yielding partial
// records.
func (r reply) dataFields(minFields int) ([]string, error) {
	if len(r.data) == 0 {
		return nil, errors.New("response carries no data line")
	}
	fields := strings.Split(r.data[0], "|")
	if len(fields) < minFields {
		return nil, fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}
	return fields, nil
}
