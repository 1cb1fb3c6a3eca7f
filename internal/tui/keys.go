package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play         key.Binding
	Prev         key.Binding
	Next         key.Binding
	Loop         key.Binding
	Shuffle      key.Binding
	Manual       key.Binding
	MuteEnglish  key.Binding
	MuteChinese  key.Binding
	Faster       key.Binding
	Slower       key.Binding
	FewerEnglish key.Binding
	MoreEnglish  key.Binding
	FewerChinese key.Binding
	MoreChinese  key.Binding
	Pinyin       key.Binding
	Translation  key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:         key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Prev:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev")),
		Next:         key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		Loop:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "loop")),
		Shuffle:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Manual:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual")),
		MuteEnglish:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "mute english")),
		MuteChinese:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mute chinese")),
		Faster:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:       key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		FewerEnglish: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "english -1")),
		MoreEnglish:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "english +1")),
		FewerChinese: key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "chinese -1")),
		MoreChinese:  key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "chinese +1")),
		Pinyin:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pinyin")),
		Translation:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "translation")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Prev, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Prev, k.Next, k.Quit},
		{k.Loop, k.Shuffle, k.Manual, k.Help},
		{k.MuteEnglish, k.MuteChinese, k.Faster, k.Slower},
		{k.FewerEnglish, k.MoreEnglish, k.FewerChinese, k.MoreChinese},
		{k.Pinyin, k.Translation},
	}
}
