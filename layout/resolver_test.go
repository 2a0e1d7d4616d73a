package layout

import (
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ByLCY/slidepress/fonts"
	"github.com/ByLCY/slidepress/geometry"
)

// stubMeasurer 是测试用的等宽度量：字符宽度为字号的一半。
type stubMeasurer struct{}

func (stubMeasurer) CharWidth(_ fonts.Face, size float64, _ rune) float64 { return size / 2 }
func (stubMeasurer) Metrics(_ fonts.Face, size float64) fonts.Metrics {
	return fonts.Metrics{Ascent: size * 0.75, Descent: size * 0.25}
}

func exactMeasurer(t *testing.T) *fonts.Exact {
	t.Helper()
	set, err := fonts.Bundled()
	if err != nil {
		t.Fatalf("bundled fonts: %v", err)
	}
	m, err := fonts.NewExact(set)
	if err != nil {
		t.Fatalf("exact measurer: %v", err)
	}
	return m
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestHeaderAnchorIndependentOfContent(t *testing.T) {
	contents := []SlideContent{
		{},
		{Header: "ACME / Q3", Title: "Roadmap", BodyText: "one\ntwo"},
		{Header: "multi\nline header", Layout: Centered},
		{Header: "x", Layout: QuadrantTop, UseBullets: true},
		{Header: "x", Layout: LayoutKind(42)},
	}
	for _, c := range contents {
		res := Resolve(c, stubMeasurer{})
		if res.Header.Anchor != (geometry.Point{X: 80, Y: 1000}) {
			t.Fatalf("layout %v: header anchor = %+v, want (80,1000)", c.Layout, res.Header.Anchor)
		}
		if res.Header.Flow != FlowDown {
			t.Fatalf("header must flow down")
		}
		if n := len(res.Header.Lines()); c.Header != "" && n != 1 {
			t.Fatalf("header should be a single line, got %d", n)
		}
	}
}

func TestHeaderFoldsNewlines(t *testing.T) {
	res := Resolve(SlideContent{Header: "multi\nline\r\nheader"}, stubMeasurer{})
	if got := res.Header.Texts(); !reflect.DeepEqual(got, []string{"multi line header"}) {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownLayoutFallsBackToTitleDefault(t *testing.T) {
	c := SlideContent{Title: "Hello", BodyText: "World", Layout: LayoutKind(99)}
	got := Resolve(c, stubMeasurer{})
	c.Layout = TitleDefault
	want := Resolve(c, stubMeasurer{})
	if got.Kind != TitleDefault {
		t.Fatalf("kind = %v", got.Kind)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unknown layout should resolve exactly like TitleDefault")
	}
}

func TestEmptyFieldsProduceZeroLines(t *testing.T) {
	for _, kind := range Kinds {
		res := Resolve(SlideContent{Layout: kind}, stubMeasurer{})
		for _, b := range res.Blocks() {
			if len(b.Lines()) != 0 || !b.Empty() || b.Height != 0 {
				t.Fatalf("%v: empty content should give empty blocks, got %+v", kind, b)
			}
		}
		if len(res.Overflows) != 0 {
			t.Fatalf("%v: empty content should not overflow: %+v", kind, res.Overflows)
		}
	}
}

func TestTitleDefaultAnchors(t *testing.T) {
	res := Resolve(SlideContent{
		Title:    "Roadmap Overview",
		BodyText: "first paragraph\nsecond paragraph\nlast typed line",
	}, stubMeasurer{})

	if res.Title.Anchor != (geometry.Point{X: 72, Y: 880}) || res.Title.Flow != FlowDown {
		t.Fatalf("title anchor/flow: %+v %v", res.Title.Anchor, res.Title.Flow)
	}
	if first := res.Title.Lines()[0]; first.Top != 880 {
		t.Fatalf("first title line should start at the anchor, top=%g", first.Top)
	}
	if res.Body.Anchor != (geometry.Point{X: 80, Y: 80}) || res.Body.Flow != FlowUp {
		t.Fatalf("body anchor/flow: %+v %v", res.Body.Anchor, res.Body.Flow)
	}
	lines := res.Body.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 body lines, got %d", len(lines))
	}
	last := lines[len(lines)-1]
	if last.Text != "last typed line" || !near(last.Top-res.Body.LineHeight, 80) {
		t.Fatalf("last typed line should sit on the bottom margin: %+v", last)
	}
	if !near(res.Body.Top(), 80+3*56) {
		t.Fatalf("body top = %g", res.Body.Top())
	}
}

// TestTitleDefaultTitleWrapsWithApproximation 125 字号、-5 字间距、每字符约 70 单位时，
// "Roadmap Overview" 宽 1045 > 960，折成两行。
func TestTitleDefaultTitleWrapsWithApproximation(t *testing.T) {
	res := Resolve(SlideContent{Title: "Roadmap Overview"}, fonts.Approximate{})
	if got := res.Title.Texts(); !reflect.DeepEqual(got, []string{"Roadmap", "Overview"}) {
		t.Fatalf("got %q", got)
	}
	lines := res.Title.Lines()
	if !near(lines[1].Top, 880-120) {
		t.Fatalf("second title line should be one line height below: %g", lines[1].Top)
	}
}

func TestQuadrantTitlesAnchorToQuadrantFloor(t *testing.T) {
	cases := []struct {
		kind       LayoutKind
		titleQ     geometry.Quadrant
		bodyQ      geometry.Quadrant
		wantBottom float64
	}{
		{QuadrantBottom, geometry.Q3, geometry.Q4, 80},
		{QuadrantTop, geometry.Q1, geometry.Q2, 1000 - 460},
		{QuadrantLargeBulleted, geometry.Q3, geometry.Q4, 80},
	}
	for _, tc := range cases {
		for _, title := range []string{"Short", "A much longer title that wraps onto several lines for sure"} {
			res := Resolve(SlideContent{Title: title, BodyText: "body", Layout: tc.kind}, stubMeasurer{})
			tq := geometry.QuadrantBounds(tc.titleQ)
			bq := geometry.QuadrantBounds(tc.bodyQ)
			if res.Title.Flow != FlowUp || res.Body.Flow != FlowUp {
				t.Fatalf("%v: quadrant blocks flow up", tc.kind)
			}
			if !near(res.Title.Bottom(), tq.Bottom()) || !near(res.Title.Bottom(), tc.wantBottom) {
				t.Fatalf("%v %q: title bottom %g, want %g", tc.kind, title, res.Title.Bottom(), tc.wantBottom)
			}
			if !near(tq.Top()-res.Title.Bottom(), 460) {
				t.Fatalf("%v: title floor should be 460 below the quadrant top", tc.kind)
			}
			if res.Title.Anchor.X != tq.Left()-geometry.TitleOpticalNudge {
				t.Fatalf("%v: title x = %g", tc.kind, res.Title.Anchor.X)
			}
			if !near(res.Body.Bottom(), bq.Bottom()) || res.Body.Anchor.X != bq.Left() {
				t.Fatalf("%v: body anchor %+v not at quadrant %d floor", tc.kind, res.Body.Anchor, tc.bodyQ)
			}
		}
	}
}

func TestQuadrantTitleGrowsUpward(t *testing.T) {
	short := Resolve(SlideContent{Title: "One", Layout: QuadrantTop}, stubMeasurer{})
	long := Resolve(SlideContent{Title: "One two three four five six seven eight nine ten", Layout: QuadrantTop}, stubMeasurer{})
	if len(long.Title.Lines()) < 2 {
		t.Fatalf("expected the long title to wrap")
	}
	if short.Title.Bottom() != long.Title.Bottom() {
		t.Fatalf("bottom edge must stay fixed: %g vs %g", short.Title.Bottom(), long.Title.Bottom())
	}
	if long.Title.Top() <= short.Title.Top() {
		t.Fatalf("longer title should grow upward")
	}
}

func TestCenteredBlockGeometry(t *testing.T) {
	res := Resolve(SlideContent{Title: "Hi", BodyText: "Body text", Layout: Centered}, stubMeasurer{})
	// total = 120 + 80 + 56 = 256；titleBottom = 540 + 128 - 120 = 548。
	if !near(res.Title.Bottom(), 548) || !near(res.Title.Top(), 668) {
		t.Fatalf("title edges: top=%g bottom=%g", res.Title.Top(), res.Title.Bottom())
	}
	if !near(res.Body.Top(), 468) || res.Body.Flow != FlowDown {
		t.Fatalf("body top = %g flow=%v", res.Body.Top(), res.Body.Flow)
	}
	mid := (res.Title.Top() + res.Body.Bottom()) / 2
	if !near(mid, 540) {
		t.Fatalf("combined block should be centered on 540, got %g", mid)
	}
	for _, b := range []Block{res.Title, res.Body} {
		for _, ln := range b.Lines() {
			if !near(ln.X+ln.Width/2, 960) {
				t.Fatalf("line %q not horizontally centered: x=%g w=%g", ln.Text, ln.X, ln.Width)
			}
		}
	}
}

func TestCenteredWithoutBodyHasNoGap(t *testing.T) {
	res := Resolve(SlideContent{Title: "Alone", Layout: Centered}, stubMeasurer{})
	if !near((res.Title.Top()+res.Title.Bottom())/2, 540) {
		t.Fatalf("title alone should be centered, top=%g bottom=%g", res.Title.Top(), res.Title.Bottom())
	}
}

// TestBulletCountPerParagraph 每个非空段落恰好一个项目符号，与折行数量无关。
func TestBulletCountPerParagraph(t *testing.T) {
	body := strings.Join([]string{
		"alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu",
		"",
		"short",
		"another one",
	}, "\n")
	for _, m := range []Measurer{stubMeasurer{}, exactMeasurer(t), fonts.Approximate{}} {
		res := Resolve(SlideContent{Title: "Bullets", BodyText: body, Layout: QuadrantLargeBulleted}, m)
		if !res.Bulleted {
			t.Fatalf("large bulleted layout always renders bullets")
		}
		if got := len(res.Body.Bullets()); got != 3 {
			t.Fatalf("expected 3 bullets, got %d", got)
		}
		if len(res.Body.Paragraphs[0].Lines) < 2 {
			t.Fatalf("first paragraph should wrap to exercise the rule")
		}
		if res.Body.Paragraphs[1].Bullet != nil {
			t.Fatalf("blank paragraph must not get a bullet")
		}
	}
}

func TestLargeBulletCenteredOnFirstLine(t *testing.T) {
	res := Resolve(SlideContent{
		BodyText: "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu",
		Layout:   QuadrantLargeBulleted,
	}, stubMeasurer{})
	p := res.Body.Paragraphs[0]
	first := p.Lines[0]
	if !near(p.Bullet.CY, first.Top-largeBodyStyle.LineHeight/2) {
		t.Fatalf("bullet cy=%g, first line top=%g", p.Bullet.CY, first.Top)
	}
	if !near(first.X, 960+largeBulletIndent) {
		t.Fatalf("bulleted text should be indented: x=%g", first.X)
	}
	if p.Bullet.CX >= first.X || p.Bullet.CX <= res.Body.Anchor.X {
		t.Fatalf("bullet should sit in the indent: cx=%g", p.Bullet.CX)
	}
}

func TestBulletCenteredOnParagraphBlock(t *testing.T) {
	res := Resolve(SlideContent{
		BodyText:   "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen",
		UseBullets: true,
	}, stubMeasurer{})
	p := res.Body.Paragraphs[0]
	if len(p.Lines) < 2 {
		t.Fatalf("paragraph should wrap")
	}
	first, last := p.Lines[0], p.Lines[len(p.Lines)-1]
	want := (first.Top + last.Top - bodyStyle.LineHeight) / 2
	if !near(p.Bullet.CY, want) {
		t.Fatalf("bullet cy=%g want %g", p.Bullet.CY, want)
	}
	for _, ln := range p.Lines {
		if ln.Width > res.Body.MaxWidth-res.Body.Indent {
			t.Fatalf("bulleted lines wrap to the indented width")
		}
	}
}

func TestBaselineInsideLineBox(t *testing.T) {
	res := Resolve(SlideContent{Title: "Baseline", BodyText: "text"}, exactMeasurer(t))
	for _, b := range res.Blocks() {
		for _, ln := range b.Lines() {
			if ln.Baseline >= ln.Top || ln.Baseline <= ln.Top-b.LineHeight*1.5 {
				t.Fatalf("baseline %g outside line box top %g lh %g", ln.Baseline, ln.Top, b.LineHeight)
			}
		}
	}
}

func TestResolveDeterministicAndConcurrent(t *testing.T) {
	m := exactMeasurer(t)
	c := SlideContent{
		Header:   "ACME",
		Title:    "Quarterly business review for the platform team",
		BodyText: "Revenue grew in every region\nChurn fell for the third quarter\nHiring is on plan",
		Layout:   Centered,
	}
	want := Resolve(c, m)
	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Resolve(c, m)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("result %d differs", i)
		}
	}
}

func TestExactWidthBound(t *testing.T) {
	m := exactMeasurer(t)
	text := "Greedy wrapping keeps every line inside its measured limit unless a single word is too wide"
	for _, kind := range Kinds {
		res := Resolve(SlideContent{Title: text, BodyText: text, Layout: kind}, m)
		for _, b := range []Block{res.Title, res.Body} {
			limit := b.MaxWidth - b.Indent
			for _, ln := range b.Lines() {
				if ln.Width > limit && strings.Contains(ln.Text, " ") {
					t.Fatalf("%v: %q width %g > %g", kind, ln.Text, ln.Width, limit)
				}
			}
		}
	}
}

func TestOverflowReports(t *testing.T) {
	res := Resolve(SlideContent{Title: strings.Repeat("W", 40), Layout: QuadrantTop}, stubMeasurer{})
	if !hasOverflow(res, "title", OverflowWord) {
		t.Fatalf("expected overlong-word overflow, got %+v", res.Overflows)
	}
	many := strings.Repeat("line\n", 12)
	res = Resolve(SlideContent{BodyText: many, Layout: QuadrantBottom}, stubMeasurer{})
	if !hasOverflow(res, "body", OverflowRegion) {
		t.Fatalf("expected region overflow, got %+v", res.Overflows)
	}
	res = Resolve(SlideContent{Title: "A B C D E F", BodyText: strings.Repeat("x\n", 14)}, fonts.Approximate{})
	if !hasOverflow(res, "body", OverflowCollision) {
		t.Fatalf("expected collision, got %+v", res.Overflows)
	}
	res = Resolve(SlideContent{Title: "Fine", BodyText: "Fine"}, stubMeasurer{})
	if res.HasOverflow() {
		t.Fatalf("unexpected overflow %+v", res.Overflows)
	}
}

func hasOverflow(r *Result, field, reason string) bool {
	for _, o := range r.Overflows {
		if o.Field == field && o.Reason == reason {
			return true
		}
	}
	return false
}

func TestNilMeasurerDoesNotPanic(t *testing.T) {
	res := Resolve(SlideContent{Title: "x"}, nil)
	if len(res.Title.Lines()) != 1 {
		t.Fatalf("expected one line")
	}
}

func TestStraySpacesDoNotMoveBlocks(t *testing.T) {
	// 正文 40 号、字宽 20、字间距 −1：42 个字符宽 799，恰好填满 800 的象限宽度。
	full := strings.Repeat("a", 42)
	tests := []struct {
		name  string
		kind  LayoutKind
		clean string
		messy string
	}{
		{"trailing space", QuadrantBottom, full + "\nnext", full + " \nnext"},
		{"leading space", QuadrantBottom, full, " " + full},
		{"doubled space", Centered, "Body text", "Body  text "},
		{"trailing title space", QuadrantTop, "Title", "Title  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean := Resolve(SlideContent{Title: tt.clean, BodyText: tt.clean, Layout: tt.kind}, stubMeasurer{})
			messy := Resolve(SlideContent{Title: tt.messy, BodyText: tt.messy, Layout: tt.kind}, stubMeasurer{})
			for _, pair := range [][2]Block{{clean.Title, messy.Title}, {clean.Body, messy.Body}} {
				if !reflect.DeepEqual(pair[0].Texts(), pair[1].Texts()) {
					t.Fatalf("lines differ: %q vs %q", pair[0].Texts(), pair[1].Texts())
				}
				if !near(pair[0].Height, pair[1].Height) || !near(pair[0].Top(), pair[1].Top()) {
					t.Fatalf("block moved: height %g→%g top %g→%g", pair[0].Height, pair[1].Height, pair[0].Top(), pair[1].Top())
				}
				cl, ml := pair[0].Lines(), pair[1].Lines()
				for i := range cl {
					if !near(cl[i].X, ml[i].X) || !near(cl[i].Width, ml[i].Width) {
						t.Fatalf("line %d shifted: x %g→%g width %g→%g", i, cl[i].X, ml[i].X, cl[i].Width, ml[i].Width)
					}
				}
			}
		})
	}
}
