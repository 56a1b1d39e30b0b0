package config

import (
	"sync"
	"syscall"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSignalHandler_SIGHUP_TriggersReload(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "split:\n  max_piece_size: 100\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	var mu sync.Mutex
	var gotPrev, gotCur *Config
	SetupSignalHandler(func(previous, current *Config) {
		mu.Lock()
		gotPrev, gotCur = previous, current
		mu.Unlock()
	})
	t.Cleanup(StopSignalHandler)

	writeConfigFile(t, dir, "split:\n  max_piece_size: 200\n")

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("failed to send SIGHUP: %v", err)
	}

	ok := waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotCur != nil
	})
	if !ok {
		t.Fatal("reload callback not invoked after SIGHUP")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPrev.Split.MaxPieceSize != 100 {
		t.Errorf("previous MaxPieceSize = %d, want 100", gotPrev.Split.MaxPieceSize)
	}
	if gotCur.Split.MaxPieceSize != 200 {
		t.Errorf("current MaxPieceSize = %d, want 200", gotCur.Split.MaxPieceSize)
	}
}

func TestSignalHandler_InvalidReloadKeepsConfig(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "split:\n  max_piece_size: 100\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	called := make(chan struct{}, 1)
	SetupSignalHandler(func(previous, current *Config) { called <- struct{}{} })
	t.Cleanup(StopSignalHandler)

	writeConfigFile(t, dir, "split:\n  max_piece_size: 0\n")
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("failed to send SIGHUP: %v", err)
	}

	select {
	case <-called:
		t.Fatal("reload callback invoked for invalid config")
	case <-time.After(200 * time.Millisecond):
	}

	if got := Get().Split.MaxPieceSize; got != 100 {
		t.Errorf("MaxPieceSize = %d after invalid reload, want 100", got)
	}
}

func TestSignalHandler_SetupTwiceAndStop(t *testing.T) {
	isolate(t)
	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	SetupSignalHandler(nil)
	SetupSignalHandler(nil)
	StopSignalHandler()
	StopSignalHandler()
}
