package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

func TestBackoff(t *testing.T) {
	b := &backoff{next: time.Second, max: 5 * time.Second}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.wait(); got != w {
			t.Errorf("wait() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	opts := ConnectOptions{WarnThreshold: -1}.withDefaults()

	if opts.ConnectTimeout <= 0 || opts.RetryInterval <= 0 || opts.MaxWait <= 0 || opts.PingTimeout <= 0 {
		t.Errorf("withDefaults() left zero durations: %+v", opts)
	}
	if opts.WarnThreshold != 0 {
		t.Errorf("withDefaults() WarnThreshold = %v, want 0", opts.WarnThreshold)
	}

	custom := ConnectOptions{ConnectTimeout: time.Minute}.withDefaults()
	if custom.ConnectTimeout != time.Minute {
		t.Errorf("withDefaults() overrode ConnectTimeout: %v", custom.ConnectTimeout)
	}
}

func TestNewWithoutAddr(t *testing.T) {
	_, err := New(context.Background(), ConnectOptions{}, logger.Nop())
	if !errors.Is(err, ErrNoAddr) {
		t.Errorf("New() error = %v, want ErrNoAddr", err)
	}
}

func TestNewUnreachable(t *testing.T) {
	opts := ConnectOptions{
		Addr:           "127.0.0.1:1",
		DialTimeout:    50 * time.Millisecond,
		ConnectTimeout: 200 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
	}

	start := time.Now()
	_, err := New(context.Background(), opts, logger.Nop())
	if err == nil {
		t.Fatal("New() against a closed port should fail")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("New() took %v, should give up near ConnectTimeout", elapsed)
	}
}
