package layout

import (
	"strings"
	"testing"
)

func TestAbsBreaksIntoThreeDrawEntries(t *testing.T) {
	env := newTestEnv(t)
	inner := NewText(env, "x+y", StyleDefault)
	abs := NewAbs(env, inner)
	cfg := env.Config()

	eng := NewEngine(env)
	RecalculateList(abs, cfg.FontSize)
	if abs.Width() <= 6 {
		t.Fatalf("test needs an abs wider than the line: width=%g", abs.Width())
	}
	eng.Layout(abs, 6)

	if !abs.IsBrokenIntoLines() {
		t.Fatalf("abs wider than the line must be broken into lines")
	}
	var entries []Node
	for _, ln := range Lines(abs) {
		entries = append(entries, ln.Cells...)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 draw entries, got %d", len(entries))
	}
	if entries[0].String() != "|" || entries[1] != Node(inner) || entries[2].String() != "|" {
		t.Fatalf("unexpected draw entries: %q %q %q", entries[0], entries[1], entries[2])
	}

	var sum float64
	for _, n := range entries {
		sum += n.Width()
	}
	surface := &recordingSurface{}
	eng.Draw(abs, Point{X: 0, Y: 10}, &DrawContext{Surface: surface})
	if len(surface.texts) != 3 || len(surface.lines) != 0 {
		t.Fatalf("broken abs must draw 3 texts and no bars, got texts=%d lines=%d", len(surface.texts), len(surface.lines))
	}
	var drawn float64
	for _, d := range surface.texts {
		drawn += stubMeasurer{}.TextWidth(d.Text, StyleDefault, d.FontSize)
	}
	if !near(drawn, sum) {
		t.Fatalf("drawn width %g != sum of fragment widths %g", drawn, sum)
	}
	if s, _ := Export(abs, FormatText); s != "abs(x+y)" {
		t.Fatalf("export while broken = %q, want abs(x+y)", s)
	}
}

func TestAbsDrawsBarsWhenUnbroken(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, txt(env, "x"))
	cfg := env.Config()
	eng := NewEngine(env)
	eng.Layout(abs, 100)

	surface := &recordingSurface{}
	eng.Draw(abs, Point{X: 0, Y: 10}, &DrawContext{Surface: surface})
	if len(surface.lines) != 2 || len(surface.texts) != 1 {
		t.Fatalf("expected 2 bars and 1 text, got lines=%d texts=%d", len(surface.lines), len(surface.texts))
	}
	if got, want := surface.texts[0].X, 4*cfg.Unit+cfg.StrokeWidth; !near(got, want) {
		t.Fatalf("inner x = %g, want %g", got, want)
	}
	if got, want := abs.Width(), 1.5+8*cfg.Unit+2*cfg.StrokeWidth; !near(got, want) {
		t.Fatalf("abs width = %g, want %g", got, want)
	}
	if got, want := abs.Height(), 4+4*cfg.Unit; !near(got, want) {
		t.Fatalf("abs height = %g, want %g", got, want)
	}
	left := surface.lines[0]
	if !near(left.Y1, 10-abs.Center()+2*cfg.Unit) || !near(left.X1, 2*cfg.Unit+cfg.StrokeWidth/2) {
		t.Fatalf("left bar at (%g,%g)", left.X1, left.Y1)
	}
}

func TestNestedOversizedNodesAreDecomposed(t *testing.T) {
	env := newTestEnv(t)
	long := txt(env, "abcdefgh")
	innerAbs := NewAbs(env, long)
	outer := NewAbs(env, innerAbs)
	eng := NewEngine(env)
	eng.Layout(outer, 13)

	if !outer.IsBrokenIntoLines() || !innerAbs.IsBrokenIntoLines() {
		t.Fatalf("both levels must break: outer=%v inner=%v", outer.IsBrokenIntoLines(), innerAbs.IsBrokenIntoLines())
	}
	var texts []string
	for _, ln := range Lines(outer) {
		for _, n := range ln.Cells {
			texts = append(texts, n.String())
		}
	}
	if got := strings.Join(texts, " "); got != "| | abcdefgh | |" {
		t.Fatalf("draw entries = %q", got)
	}

	// 更宽的行会撤销所有展开。
	eng.Layout(outer, 100)
	if outer.IsBrokenIntoLines() || innerAbs.IsBrokenIntoLines() {
		t.Fatalf("wider layout must unbreak")
	}
	if got := len(DrawCells(outer)); got != 1 {
		t.Fatalf("draw order after unbreak has %d cells, want 1", got)
	}
	if got := len(Lines(outer)); got != 1 {
		t.Fatalf("lines after unbreak = %d, want 1", got)
	}
}

func TestRelayoutWithFreshEngineUnbreaks(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, NewText(env, "x+y", StyleDefault))

	NewEngine(env).Layout(abs, 6)
	if !abs.IsBrokenIntoLines() {
		t.Fatalf("setup: abs must be broken at width 6")
	}

	eng := NewEngine(env)
	eng.Layout(abs, 100)
	if abs.IsBrokenIntoLines() {
		t.Fatalf("abs still broken after layout at width 100 with another engine")
	}
	if got := len(DrawCells(abs)); got != 1 {
		t.Fatalf("draw cells = %d, want 1", got)
	}
	surface := &recordingSurface{}
	eng.Draw(abs, Point{X: 0, Y: 10}, &DrawContext{Surface: surface})
	if len(surface.lines) != 2 || len(surface.texts) != 1 {
		t.Fatalf("unbroken abs must draw 2 bars and 1 text, got lines=%d texts=%d", len(surface.lines), len(surface.texts))
	}
}

func TestConfigChangeUnbreaksOnNextLayout(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, NewText(env, "x+y", StyleDefault))
	eng := NewEngine(env)
	eng.Layout(abs, 6)
	if !abs.IsBrokenIntoLines() {
		t.Fatalf("setup: abs must be broken at width 6")
	}

	// 同样的行宽，字号减半后 abs 能放进一行。
	cfg := env.Config()
	cfg.FontSize = 6
	env.SetConfig(cfg)
	NewEngine(env).Layout(abs, 6)
	if abs.IsBrokenIntoLines() {
		t.Fatalf("abs still broken after config change, width=%g", abs.Width())
	}
	if got, want := abs.Width(), 2.25+8*cfg.Unit+2*cfg.StrokeWidth; !near(got, want) {
		t.Fatalf("abs width at 6pt = %g, want %g", got, want)
	}
}

func TestUnbreakClearsDecorationLineStarts(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, NewText(env, "x+y", StyleDefault))
	head := Chain(txt(env, "abc"), abs)
	eng := NewEngine(env)
	eng.Layout(head, 6)
	if !abs.IsBrokenIntoLines() || !abs.open.BreakLine() {
		t.Fatalf("setup: opening bar must start a line, broken=%v", abs.IsBrokenIntoLines())
	}

	eng.Layout(head, 100)
	for _, n := range collect(head) {
		if n.BreakLine() {
			t.Fatalf("%s %q keeps a line start after unbreak", n.Kind(), n.String())
		}
	}
	if got := len(Lines(head)); got != 1 {
		t.Fatalf("lines = %d, want 1", got)
	}
}

func TestGreedyLinesRespectWidth(t *testing.T) {
	env := newTestEnv(t)
	var head Node
	for _, s := range []string{"ab", "c", "defg", "+", "h", "ijklmnopqrstuvw", "x", "yz", "=", "0"} {
		head = Append(head, txt(env, s))
	}
	const width = 10.0
	eng := NewEngine(env)
	size := eng.Layout(head, width)

	lines := Lines(head)
	if len(lines) < 3 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width > width && len(ln.Cells) > 1 {
			t.Fatalf("line %d width %g exceeds %g with %d cells", i, ln.Width, width, len(ln.Cells))
		}
		if i > 0 && !ln.Cells[0].BreakLine() {
			t.Fatalf("line %d does not start with a break", i)
		}
	}
	if size.Width <= width {
		t.Fatalf("the oversized run must overflow: extent=%g", size.Width)
	}

	// 相同宽度再次排版不做任何重算。
	before := env.Recalculations()
	eng.Layout(head, width)
	if got := env.Recalculations(); got != before {
		t.Fatalf("relayout at same width recalculated %d nodes", got-before)
	}
}

func TestForceBreakAndBigSkip(t *testing.T) {
	env := newTestEnv(t)
	a, b, c := txt(env, "a"), txt(env, "b"), txt(env, "c")
	head := Chain(a, b, c)
	eng := NewEngine(env)
	cfg := env.Config()

	size := eng.Layout(head, 100)
	if got := len(Lines(head)); got != 1 {
		t.Fatalf("lines = %d, want 1", got)
	}
	if !near(size.Height, 4) {
		t.Fatalf("single line height = %g, want 4", size.Height)
	}

	c.SetForceBreakLine(true)
	size = eng.Layout(head, 100)
	if got := len(Lines(head)); got != 2 {
		t.Fatalf("lines with force break = %d, want 2", got)
	}
	if want := 8 + cfg.LineSkip; !near(size.Height, want) {
		t.Fatalf("two line height = %g, want %g", size.Height, want)
	}

	b.SetBigSkip(true)
	size = eng.Layout(head, 100)
	if want := 8 + cfg.LineSkip + cfg.BigSkip; !near(size.Height, want) {
		t.Fatalf("big skip height = %g, want %g", size.Height, want)
	}
}

func TestForceBreakOfBrokenNodeMovesToFirstFragment(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, txt(env, "abcdefgh"))
	abs.SetForceBreakLine(true)
	head := Chain(txt(env, "a"), abs)
	eng := NewEngine(env)
	eng.Layout(head, 13)

	lines := Lines(head)
	if len(lines) < 2 {
		t.Fatalf("expected at least 2 lines, got %d", len(lines))
	}
	if lines[0].Cells[0].String() != "a" || len(lines[0].Cells) != 1 {
		t.Fatalf("first line must only hold the leading run")
	}
}

func TestDrawSkipsOutsideClipButKeepsCursor(t *testing.T) {
	env := newTestEnv(t)
	second := txt(env, "bb")
	second.SetForceBreakLine(true)
	head := Chain(txt(env, "aa"), txt(env, "cc"), second)
	eng := NewEngine(env)
	eng.Layout(head, 100)
	origin := Point{X: 2, Y: 10}

	full := &recordingSurface{}
	eng.Draw(head, origin, &DrawContext{Surface: full})
	if len(full.texts) != 3 {
		t.Fatalf("unclipped draw painted %d runs, want 3", len(full.texts))
	}

	clipped := &recordingSurface{}
	eng.Draw(head, origin, &DrawContext{Surface: clipped, Clip: &Rect{X: 0, Y: 13, Width: 100, Height: 5}})
	if len(clipped.texts) != 1 {
		t.Fatalf("clipped draw painted %d runs, want 1", len(clipped.texts))
	}
	if clipped.texts[0] != full.texts[2] {
		t.Fatalf("clipped position %+v != unclipped %+v", clipped.texts[0], full.texts[2])
	}
	if want := 10 + 1 + env.Config().LineSkip + 3; !near(clipped.texts[0].Y, want) {
		t.Fatalf("second baseline = %g, want %g", clipped.texts[0].Y, want)
	}
	if !near(full.texts[1].X, origin.X+3+env.Config().CellSkip) {
		t.Fatalf("cursor x = %g", full.texts[1].X)
	}
}

func TestSubSupGeometry(t *testing.T) {
	env := newTestEnv(t)
	ss := NewSubSup(env, txt(env, "x"))
	ss.SetExponent(num(env, "2"))
	ss.SetIndex(txt(env, "i"))
	cfg := env.Config()
	RecalculateList(ss, cfg.FontSize)

	// 上下标字号 9pt：宽 1.125、上升 2.25、下降 0.75。
	if !near(ss.Width(), 1.5+1.125) {
		t.Fatalf("width = %g", ss.Width())
	}
	if want := 1.5 + 3.0; !near(ss.Center(), want) {
		t.Fatalf("center = %g, want %g", ss.Center(), want)
	}
	if want := 4.5 + 0.5 + 3.0; !near(ss.Height(), want) {
		t.Fatalf("height = %g, want %g", ss.Height(), want)
	}

	surface := &recordingSurface{}
	ss.Draw(&DrawContext{Surface: surface}, Point{X: 0, Y: 10})
	if len(surface.texts) != 3 {
		t.Fatalf("drew %d runs, want 3", len(surface.texts))
	}
	exp, idx := surface.texts[1], surface.texts[2]
	if exp.FontSize != 9 || !near(exp.Y, 10-1.5-0.75) {
		t.Fatalf("exponent drawn at y=%g size=%g", exp.Y, exp.FontSize)
	}
	if !near(idx.Y, 10+0.5+2.25) {
		t.Fatalf("index drawn at y=%g", idx.Y)
	}
}

func TestScriptSizeHasFloor(t *testing.T) {
	env := newTestEnv(t)
	if got := env.scriptSize(7); got != env.Config().MinFontSize {
		t.Fatalf("scriptSize(7) = %g, want floor %g", got, env.Config().MinFontSize)
	}
}

func TestSnapshotMatchesDraw(t *testing.T) {
	env := newTestEnv(t)
	b := txt(env, "b")
	b.SetForceBreakLine(true)
	head := Chain(txt(env, "a"), b)
	NewEngine(env).Layout(head, 100)

	dump := Snapshot(head, Point{X: 1, Y: 5})
	if len(dump.Lines) != 2 {
		t.Fatalf("snapshot lines = %d, want 2", len(dump.Lines))
	}
	if c := dump.Lines[1].Cells[0]; c.Text != "b" || !c.Forced || !near(c.Y, dump.Lines[1].Baseline) {
		t.Fatalf("unexpected snapshot cell %+v", c)
	}
	if !near(dump.Extent.Height, Extent(head).Height) {
		t.Fatalf("snapshot extent differs from Extent")
	}
}
