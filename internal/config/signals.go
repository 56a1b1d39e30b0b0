package config

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ReloadFunc receives the configuration before and after a successful reload.
type ReloadFunc func(previous, current *Config)

// reloader owns one SIGHUP subscription.
type reloader struct {
	signals  chan os.Signal
	stop     chan struct{}
	done     chan struct{}
	onReload ReloadFunc
}

var (
	// reloadMu serializes reloads; a SIGHUP arriving mid-reload is dropped
	reloadMu sync.Mutex

	activeMu sync.Mutex
	active   *reloader
)

// SetupSignalHandler reloads the configuration on every SIGHUP and passes
// the old and new values to onReload when a section changed. Calling it
// again replaces the previous handler. onReload may be nil.
func SetupSignalHandler(onReload ReloadFunc) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		active.close()
	}

	r := &reloader{
		signals:  make(chan os.Signal, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		onReload: onReload,
	}
	signal.Notify(r.signals, syscall.SIGHUP)
	go r.run()

	active = r
}

// StopSignalHandler stops the current handler and waits for it to exit.
func StopSignalHandler() {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == nil {
		return
	}
	active.close()
	active = nil
}

func (r *reloader) close() {
	close(r.stop)
	<-r.done
}

func (r *reloader) run() {
	defer close(r.done)
	defer signal.Stop(r.signals)

	for {
		select {
		case <-r.signals:
			if !reloadMu.TryLock() {
				slog.Debug("SIGHUP received during reload; ignoring")
				continue
			}
			slog.Info("received SIGHUP; reloading config")
			r.reload()
			reloadMu.Unlock()
		case <-r.stop:
			return
		}
	}
}

func (r *reloader) reload() {
	previous := Get()
	if err := Reload(); err != nil {
		return // logged by Reload
	}
	current := Get()
	if r.onReload == nil || previous == nil || current == nil {
		return
	}
	if changed := ChangedSections(previous, current); len(changed) > 0 {
		slog.Info("config sections changed", "sections", changed)
		r.onReload(previous, current)
	}
}
