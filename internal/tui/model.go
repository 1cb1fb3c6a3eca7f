// Package tui is a terminal flashcard player driving one session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/session"
)

// Controller is the part of a session the player drives.
type Controller interface {
	Snapshot() session.Snapshot
	OnChange(fn func(session.Snapshot))
	TogglePlaying() error
	Next() error
	Prev() error
	SetLoop(on bool) error
	SetShuffle(on bool) error
	SetManual(on bool) error
	SetMute(lang audio.Lang, muted bool) error
	IncreaseSpeed() error
	DecreaseSpeed() error
	SetRepeatEnglish(n int) error
	SetRepeatChinese(n int) error
	Apply(p session.Settings) error
}

// snapshotMsg carries a state change published by the session goroutines.
type snapshotMsg session.Snapshot

type model struct {
	ctl     Controller
	updates *watcher
	snap    session.Snapshot
	keys    keyMap
	help    help.Model
	err     error
	width   int
}

func newModel(ctl Controller) model {
	w := newWatcher()
	ctl.OnChange(w.push)
	return model{
		ctl:     ctl,
		updates: w,
		snap:    ctl.Snapshot(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return m.updates.wait
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		return m, m.updates.wait

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.err = m.handleKey(msg)
		m.snap = m.ctl.Snapshot()
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) error {
	s := m.snap
	switch {
	case key.Matches(msg, m.keys.Play):
		return m.ctl.TogglePlaying()
	case key.Matches(msg, m.keys.Prev):
		return m.ctl.Prev()
	case key.Matches(msg, m.keys.Next):
		return m.ctl.Next()
	case key.Matches(msg, m.keys.Loop):
		return m.ctl.SetLoop(!s.LoopMode)
	case key.Matches(msg, m.keys.Shuffle):
		return m.ctl.SetShuffle(!s.ShuffleMode)
	case key.Matches(msg, m.keys.Manual):
		return m.ctl.SetManual(!s.ManualMode)
	case key.Matches(msg, m.keys.MuteEnglish):
		return m.ctl.SetMute(audio.LangEnglish, !s.MuteEnglish)
	case key.Matches(msg, m.keys.MuteChinese):
		return m.ctl.SetMute(audio.LangChinese, !s.MuteChinese)
	case key.Matches(msg, m.keys.Faster):
		return m.ctl.IncreaseSpeed()
	case key.Matches(msg, m.keys.Slower):
		return m.ctl.DecreaseSpeed()
	case key.Matches(msg, m.keys.FewerEnglish):
		return m.ctl.SetRepeatEnglish(s.RepeatEnglish - 1)
	case key.Matches(msg, m.keys.MoreEnglish):
		return m.ctl.SetRepeatEnglish(s.RepeatEnglish + 1)
	case key.Matches(msg, m.keys.FewerChinese):
		return m.ctl.SetRepeatChinese(s.RepeatChinese - 1)
	case key.Matches(msg, m.keys.MoreChinese):
		return m.ctl.SetRepeatChinese(s.RepeatChinese + 1)
	case key.Matches(msg, m.keys.Pinyin):
		show := !s.ShowPinyin
		return m.ctl.Apply(session.Settings{ShowPinyin: &show})
	case key.Matches(msg, m.keys.Translation):
		show := !s.ShowEnglish
		return m.ctl.Apply(session.Settings{ShowEnglish: &show})
	}
	return nil
}

func (m model) View() string {
	var b strings.Builder
	s := m.snap

	b.WriteString(styleHeader.Render(fmt.Sprintf("hanziflash  %s · batch %d", s.Group, s.Batch)))
	b.WriteString(styleSubtle.Render(fmt.Sprintf("  card %d/%d", s.Index+1, s.Total)))
	b.WriteString("\n")

	var card strings.Builder
	if s.Sentence == nil {
		card.WriteString(styleSubtle.Render("  no sentence"))
	} else {
		card.WriteString(styleChinese.Render(s.Sentence.TextChinese))
		if s.ShowPinyin && s.Sentence.Pinyin != "" {
			card.WriteString("\n" + stylePinyin.Render(s.Sentence.Pinyin))
		}
		if s.ShowEnglish {
			card.WriteString("\n" + styleEnglish.Render(s.Sentence.TextEnglish))
		}
	}
	b.WriteString(styleCard.Render(card.String()))
	b.WriteString("\n")

	status := "paused"
	if s.IsPlaying {
		status = styleOn.Render("playing") + styleSubtle.Render(" ("+s.Playback+")")
	}
	b.WriteString(fmt.Sprintf(" %s  %s %s %s  speed %.1fx  zh×%d en×%d  %s %s\n",
		status,
		flag("loop", s.LoopMode), flag("shuffle", s.ShuffleMode), flag("manual", s.ManualMode),
		s.Speed, s.RepeatChinese, s.RepeatEnglish,
		flag("zh-muted", s.MuteChinese), flag("en-muted", s.MuteEnglish),
	))

	if s.LastError != "" {
		b.WriteString(styleError.Render(" " + s.LastError))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styleError.Render(" " + m.err.Error()))
		b.WriteString("\n")
	}
	if n := len(s.Diagnostics); n > 0 {
		b.WriteString(styleSubtle.Render(fmt.Sprintf(" %d clip names skipped in this batch", n)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run plays ctl in the terminal until the user quits or ctx ends.
func Run(ctx context.Context, ctl Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(newModel(ctl), opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
