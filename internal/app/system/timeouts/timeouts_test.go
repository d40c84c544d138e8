package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	if Ping() != DefaultPing {
		t.Errorf("Ping() = %v, want %v", Ping(), DefaultPing)
	}
	if Short() != DefaultShort {
		t.Errorf("Short() = %v, want %v", Short(), DefaultShort)
	}
	if Batch() != DefaultBatch {
		t.Errorf("Batch() = %v, want %v", Batch(), DefaultBatch)
	}
}

func TestConfigureIgnoresZeroValues(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Short: 15 * time.Second})

	if Short() != 15*time.Second {
		t.Errorf("Short() = %v, want 15s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", Medium(), DefaultMedium)
	}
	if Long() != DefaultLong {
		t.Errorf("Long() = %v, want default %v", Long(), DefaultLong)
	}
}

func TestCurrentReflectsConfiguration(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Ping: time.Second, Batch: 2 * time.Minute})
	cur := Current()
	if cur.Ping != time.Second || cur.Batch != 2*time.Minute {
		t.Errorf("Current() = %+v", cur)
	}
}
