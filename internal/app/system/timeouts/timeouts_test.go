package timeouts_test

import (
	"testing"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/timeouts"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Upload: 5 * time.Minute})

	if got := timeouts.Upload(); got != 5*time.Minute {
		t.Errorf("Upload: got %v, want 5m", got)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short: got %v, want default %v", got, timeouts.DefaultShort)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Hour})
	timeouts.Reset()
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping after Reset: got %v", got)
	}
}
