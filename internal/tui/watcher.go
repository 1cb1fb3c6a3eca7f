package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vytor/hanziflash/internal/session"
)

// watcher hands session changes to the program. Only the newest snapshot is
// kept, so push never blocks the session goroutine that published it.
type watcher struct {
	ch chan session.Snapshot
}

func newWatcher() *watcher {
	return &watcher{ch: make(chan session.Snapshot, 1)}
}

func (w *watcher) push(s session.Snapshot) {
	for {
		select {
		case w.ch <- s:
			return
		default:
		}
		select {
		case <-w.ch:
		default:
		}
	}
}

// wait is a tea.Cmd that blocks for the next snapshot.
func (w *watcher) wait() tea.Msg {
	return snapshotMsg(<-w.ch)
}
