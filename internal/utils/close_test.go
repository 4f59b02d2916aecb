package utils

import (
	"io"
	"strings"
	"testing"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"unread": true}`)}

	DrainAndClose(body)

	if !body.closed {
		t.Error("body was not closed")
	}
	if n, _ := body.Read(make([]byte, 1)); n != 0 {
		t.Error("body was not drained")
	}
}
