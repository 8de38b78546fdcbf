package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Reset    key.Binding
	Enter    key.Binding
	Tankers  key.Binding
	Esc      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "prev sortie")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "next sortie")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "pan earlier")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "pan later")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Reset:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Tankers:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tankers")),
	Esc:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "drawer up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "drawer down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.ZoomIn, k.ZoomOut, k.Reset, k.Enter, k.Tankers, k.Esc, k.Quit}
}
