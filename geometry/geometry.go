package geometry

import "math"

// 页面坐标系：原点位于页面左下角，y 轴向上（与 PDF 一致）。单位为页面单位（1 单位 = 1 CSS px）。
const (
	PageWidth  = 1920.0
	PageHeight = 1080.0
	PageMargin = 80.0
	GridPitch  = 40.0

	QuadrantWidth  = 880.0
	QuadrantHeight = 460.0

	// TitleOpticalNudge 标题字形左侧留白较大，向左偏移 8 单位后视觉上与网格对齐。
	TitleOpticalNudge = 8.0
)

// PageCenter 为页面几何中心。
var PageCenter = Point{X: PageWidth / 2, Y: PageHeight / 2}

// Point 是页面上的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 以左下角 (X, Y) 与宽高描述矩形。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y }
func (r Rect) Top() float64    { return r.Y + r.H }
func (r Rect) Area() float64   { return r.W * r.H }
func (r Rect) IsZero() bool    { return r.W == 0 && r.H == 0 }

// Overlaps reports whether r and o share a region of positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Bottom() < o.Top() && o.Bottom() < r.Top()
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left() >= r.Left() && o.Right() <= r.Right() &&
		o.Bottom() >= r.Bottom() && o.Top() <= r.Top()
}

// Page returns the full page rectangle.
func Page() Rect { return Rect{W: PageWidth, H: PageHeight} }

// Interior 返回去掉四周页边距后的内容区域。
func Interior() Rect {
	return Rect{
		X: PageMargin,
		Y: PageMargin,
		W: PageWidth - 2*PageMargin,
		H: PageHeight - 2*PageMargin,
	}
}

// Quadrant 编号：1、2 为上排（左、右），3、4 为下排（左、右）。
type Quadrant int

const (
	Q1 Quadrant = iota + 1
	Q2
	Q3
	Q4
)

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool { return q >= Q1 && q <= Q4 }

// QuadrantBounds 根据页边距与象限尺寸计算象限矩形；非法编号返回零值矩形。
func QuadrantBounds(q Quadrant) Rect {
	if !q.Valid() {
		return Rect{}
	}
	interior := Interior()
	col := float64((int(q) - 1) % 2)
	row := float64((int(q) - 1) / 2) // 0 = 上排
	return Rect{
		X: interior.X + col*QuadrantWidth,
		Y: interior.Top() - (row+1)*QuadrantHeight,
		W: QuadrantWidth,
		H: QuadrantHeight,
	}
}

// Quadrants returns the bounds of Q1..Q4 in order.
func Quadrants() [4]Rect {
	return [4]Rect{QuadrantBounds(Q1), QuadrantBounds(Q2), QuadrantBounds(Q3), QuadrantBounds(Q4)}
}

// SnapToGrid 将数值吸附到最近的网格线（GridPitch 的整数倍）。
func SnapToGrid(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v/GridPitch) * GridPitch
}

// OnGrid reports whether v is a multiple of GridPitch.
func OnGrid(v float64) bool {
	return math.Abs(v-SnapToGrid(v)) < 1e-9
}
