// Package render paints terminal snapshots onto a tcell screen and
// feeds key and resize events back into the terminal.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/starlingterm/starling/grid"
	"github.com/starlingterm/starling/keybindings"
	"github.com/starlingterm/starling/shell"
)

// Painter draws snapshots onto a tcell screen, repainting only the
// rows that changed since the previous snapshot.
type Painter struct {
	screen tcell.Screen
	theme  Theme
	prev   *grid.Snapshot
	bells  uint64
}

// NewPainter creates a painter for screen using theme.
func NewPainter(screen tcell.Screen, theme Theme) *Painter {
	return &Painter{screen: screen, theme: theme}
}

// Paint renders snap. Unchanged rows are left alone; geometry or
// scroll position changes force a full repaint.
func (p *Painter) Paint(snap *grid.Snapshot) {
	if snap == nil {
		return
	}

	if p.prev == nil || p.prev.Rows != snap.Rows || p.prev.Cols != snap.Cols {
		p.screen.Clear()
	}

	for _, row := range snap.DiffRows(p.prev) {
		p.paintRow(snap, row)
	}

	if snap.ScrollOffset > 0 {
		p.paintScrollIndicator(snap)
	}

	if snap.CursorVisible {
		p.screen.ShowCursor(snap.CursorCol, snap.CursorRow)
	} else {
		p.screen.HideCursor()
	}

	if p.prev != nil && snap.Bells > p.bells {
		_ = p.screen.Beep() // best effort
	}
	p.bells = snap.Bells

	p.prev = snap
	p.screen.Show()
}

func (p *Painter) paintRow(snap *grid.Snapshot, row int) {
	for col := 0; col < snap.Cols; col++ {
		cell := snap.Cells[row][col]
		p.screen.SetContent(col, row, cell.Char, nil, p.styleFor(cell))

		// A wide rune spills into the next column; leave its blank
		// continuation cell alone so tcell keeps the glyph intact.
		if grid.RuneWidth(cell.Char) == 2 && col+1 < snap.Cols && snap.Cells[row][col+1].Char == ' ' {
			col++
		}
	}
}

// paintScrollIndicator overlays the scrollback position in the top
// right corner while the view is in history.
func (p *Painter) paintScrollIndicator(snap *grid.Snapshot) {
	msg := fmt.Sprintf(" %d/%d ", snap.ScrollOffset, snap.ScrollbackLen)
	st := tcell.StyleDefault.
		Foreground(toTcellColor(p.theme.Background)).
		Background(toTcellColor(p.theme.Selection)).
		Bold(true)

	x := snap.Cols - runewidth.StringWidth(msg)
	if x < 0 {
		x = 0
	}
	for _, ch := range msg {
		p.screen.SetContent(x, 0, ch, nil, st)
		x += runewidth.RuneWidth(ch)
	}
}

func (p *Painter) styleFor(cell grid.Cell) tcell.Style {
	// A translucent background carries a foreground color (the reverse
	// video tint), so its default resolves to the theme foreground.
	bgDef := p.theme.Background
	if cell.Bg.A < 255 && cell.Bg.Type == grid.ColorDefault {
		bgDef = p.theme.Foreground
	}
	bg := p.resolve(cell.Bg, bgDef, p.theme.Background)
	fg := p.resolve(cell.Fg, p.theme.Foreground, bg)
	return tcell.StyleDefault.
		Foreground(toTcellColor(fg)).
		Background(toTcellColor(bg)).
		Bold(cell.Bold)
}

// resolve maps a grid color onto a concrete color. Translucent colors
// are blended over whatever sits underneath them.
func (p *Painter) resolve(c grid.Color, def, under colorful.Color) colorful.Color {
	var out colorful.Color
	switch c.Type {
	case grid.ColorIndexed:
		out = ansiColor(c.Index)
	case grid.ColorRGB:
		out = colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	default:
		out = def
	}
	if c.A < 255 {
		out = under.BlendRgb(out, float64(c.A)/255)
	}
	return out
}

func toTcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// terminal is the slice of term.Terminal the UI drives.
type terminal interface {
	Snapshot() *grid.Snapshot
	Changed() <-chan struct{}
	Events() <-chan shell.Event
	SendInput(text string)
	Interrupt()
	Resize(rows, cols int) error
	ScrollUp(lines int)
	ScrollDown(lines int)
	ResetScroll()
	Close()
}

// Options configures the UI.
type Options struct {
	Theme  Theme
	Keys   keybindings.Options
	Logger *slog.Logger
}

// UI runs the interactive loop: snapshots out to the screen, key and
// resize events back into the terminal.
type UI struct {
	screen  tcell.Screen
	term    terminal
	painter *Painter
	keys    keybindings.Options
	log     *slog.Logger
}

// NewUI wires a screen to a terminal.
func NewUI(screen tcell.Screen, tm terminal, opts Options) *UI {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &UI{
		screen:  screen,
		term:    tm,
		painter: NewPainter(screen, opts.Theme),
		keys:    opts.Keys,
		log:     log.With("component", "render"),
	}
}

// Run paints and processes events until the shell terminates, the
// user exits, or ctx is canceled. The screen must already be
// initialized; the caller owns Fini.
func (u *UI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	u.painter.Paint(u.term.Snapshot())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		u.paintLoop(ctx)
		return nil
	})
	g.Go(func() error {
		u.eventLoop(ctx)
		return nil
	})
	g.Go(func() error {
		// PollEvent blocks; wake it when shutting down.
		<-ctx.Done()
		_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
		return nil
	})
	return g.Wait()
}

// paintLoop repaints on every change notification and exits when the
// shell session ends.
func (u *UI) paintLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-u.term.Changed():
			u.painter.Paint(u.term.Snapshot())
		case ev, ok := <-u.term.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case shell.EventTerminated:
				u.log.Info("shell exited", "code", ev.ExitCode)
				return
			case shell.EventFailed:
				u.log.Warn("shell failed", "error", ev.Err)
			}
		}
	}
}

func (u *UI) eventLoop(ctx context.Context) {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			u.handleKey(e)
		case *tcell.EventResize:
			cols, rows := e.Size()
			if err := u.term.Resize(rows, cols); err != nil {
				u.log.Warn("resize rejected", "rows", rows, "cols", cols, "error", err)
			}
			u.screen.Sync()
		}
	}
}

func (u *UI) handleKey(ev *tcell.EventKey) {
	res := translateKeyEvent(ev, u.keys)
	switch res.Action {
	case keybindings.ActionInput:
		u.term.SendInput(string(res.Data))
	case keybindings.ActionInterrupt:
		u.term.Interrupt()
	case keybindings.ActionExit:
		u.term.Close()
	case keybindings.ActionScrollUp:
		u.term.ScrollUp(u.pageSize())
	case keybindings.ActionScrollDown:
		u.term.ScrollDown(u.pageSize())
	case keybindings.ActionScrollUpLine:
		u.term.ScrollUp(1)
	case keybindings.ActionScrollDownLine:
		u.term.ScrollDown(1)
	case keybindings.ActionScrollReset:
		u.term.ResetScroll()
	}
}

func (u *UI) pageSize() int {
	if snap := u.term.Snapshot(); snap != nil && snap.Rows > 1 {
		return snap.Rows - 1
	}
	return 1
}

var keyNames = map[tcell.Key]keybindings.Key{
	tcell.KeyEnter:      keybindings.KeyEnter,
	tcell.KeyBackspace:  keybindings.KeyBackspace,
	tcell.KeyBackspace2: keybindings.KeyBackspace,
	tcell.KeyTab:        keybindings.KeyTab,
	tcell.KeyEscape:     keybindings.KeyEscape,
	tcell.KeyUp:         keybindings.KeyUp,
	tcell.KeyDown:       keybindings.KeyDown,
	tcell.KeyLeft:       keybindings.KeyLeft,
	tcell.KeyRight:      keybindings.KeyRight,
	tcell.KeyHome:       keybindings.KeyHome,
	tcell.KeyEnd:        keybindings.KeyEnd,
	tcell.KeyPgUp:       keybindings.KeyPageUp,
	tcell.KeyPgDn:       keybindings.KeyPageDown,
	tcell.KeyInsert:     keybindings.KeyInsert,
	tcell.KeyDelete:     keybindings.KeyDelete,
	tcell.KeyF1:         keybindings.KeyF1,
	tcell.KeyF2:         keybindings.KeyF2,
	tcell.KeyF3:         keybindings.KeyF3,
	tcell.KeyF4:         keybindings.KeyF4,
	tcell.KeyF5:         keybindings.KeyF5,
	tcell.KeyF6:         keybindings.KeyF6,
	tcell.KeyF7:         keybindings.KeyF7,
	tcell.KeyF8:         keybindings.KeyF8,
	tcell.KeyF9:         keybindings.KeyF9,
	tcell.KeyF10:        keybindings.KeyF10,
	tcell.KeyF11:        keybindings.KeyF11,
	tcell.KeyF12:        keybindings.KeyF12,
}

// translateKeyEvent converts a tcell key event into a keybindings
// result.
func translateKeyEvent(ev *tcell.EventKey, opts keybindings.Options) keybindings.KeyResult {
	mods := convertMods(ev.Modifiers())
	key := ev.Key()

	if key == tcell.KeyRune {
		return keybindings.TranslateRune(ev.Rune(), mods)
	}
	if key == tcell.KeyBacktab {
		return keybindings.TranslateKey(keybindings.KeyTab, mods|keybindings.ModShift, opts)
	}
	if name, ok := keyNames[key]; ok {
		return keybindings.TranslateKey(name, mods, opts)
	}

	// tcell folds Ctrl+letter into dedicated key codes.
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return keybindings.TranslateRune(rune('a'+key-tcell.KeyCtrlA), mods|keybindings.ModCtrl)
	}
	if key == tcell.KeyCtrlSpace {
		return keybindings.TranslateRune(' ', mods|keybindings.ModCtrl)
	}

	return keybindings.KeyResult{Action: keybindings.ActionNone}
}

func convertMods(m tcell.ModMask) keybindings.Mod {
	var mods keybindings.Mod
	if m&tcell.ModShift != 0 {
		mods |= keybindings.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= keybindings.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= keybindings.ModAlt
	}
	return mods
}
