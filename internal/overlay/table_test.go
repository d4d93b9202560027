package overlay

import (
	"testing"

	"github.com/farmacob/cobtool/internal/layout"
)

func TestDrawTableEmpty(t *testing.T) {
	c := newFakeCanvas()
	tl := FractionalTable(c.Size())
	if _, ok := DefaultRenderer().DrawTable(c, tl, nil); ok {
		t.Error("DrawTable returned true for no rows")
	}
	if len(c.fills)+len(c.texts) != 0 {
		t.Error("DrawTable drew without rows")
	}
}

func TestFractionalTable(t *testing.T) {
	tl := FractionalTable(600, 800)
	if !near(tl.ColX[0], 72) || !near(tl.ColX[3], 432) {
		t.Errorf("ColX = %v", tl.ColX)
	}
	if !near(tl.Top, 672) || tl.LineHeight != 14 || tl.FontSize != 11 {
		t.Errorf("Top=%v LineHeight=%v FontSize=%v", tl.Top, tl.LineHeight, tl.FontSize)
	}
	if !near(tl.ClearLeft, 66) || !near(tl.ClearRight, 432+90+40) {
		t.Errorf("clear span = [%v, %v]", tl.ClearLeft, tl.ClearRight)
	}
}

func TestTableLayoutShift(t *testing.T) {
	tl := FractionalTable(600, 800)
	shifted := tl.Shift(50, 100)
	if !near(shifted.ColX[0], 122) || !near(shifted.ColX[3], 482) {
		t.Errorf("ColX = %v", shifted.ColX)
	}
	if !near(shifted.Top, 772) || !near(shifted.ClearLeft, 116) || !near(shifted.ClearRight, 612) {
		t.Errorf("Top=%v clear span = [%v, %v]", shifted.Top, shifted.ClearLeft, shifted.ClearRight)
	}
	if !near(tl.ColX[0], 72) {
		t.Errorf("Shift modified the receiver: ColX = %v", tl.ColX)
	}
}

func TestDrawTable(t *testing.T) {
	c := newFakeCanvas()
	tl := FractionalTable(600, 800)
	rows := [][]string{
		{"1001", "1/3", "05/03/2025", "150,00"},
		{"1002", "", "05/04/2025", "150,00"},
	}

	p, ok := DefaultRenderer().DrawTable(c, tl, rows)
	if !ok {
		t.Fatal("DrawTable returned false")
	}

	// Six rows minimum plus 1.2 for the header band.
	wantBottom := 672 - 14*7.2
	if !near(p.Clear.Y, wantBottom) || !near(p.Clear.Top(), 672) {
		t.Errorf("clear box = %+v, want [%v, 672]", p.Clear, wantBottom)
	}
	if len(c.fills) != 1 {
		t.Errorf("fills = %d, want 1", len(c.fills))
	}

	// 4 headers + 7 non-empty cells.
	if len(p.Cells) != 11 || len(c.texts) != 11 {
		t.Fatalf("cells = %d texts = %d, want 11", len(p.Cells), len(c.texts))
	}

	header := p.Cells[0]
	if header.Row != -1 || header.Text != "NOTA FISCAL" || !near(header.Y, 672+14*0.15) {
		t.Errorf("header = %+v", header)
	}
	if !c.texts[0].Bold || c.texts[4].Bold {
		t.Error("header should be bold and body regular")
	}

	first := p.Cells[4]
	// "1001" is 22pt wide in a 90pt column starting at 72.
	if first.Text != "1001" || !near(first.X, 72+(90-22)/2.0) || !near(first.Y, 672-14+1.5) {
		t.Errorf("first cell = %+v", first)
	}
	second := p.Cells[8]
	if second.Row != 1 || second.Col != 0 || !near(second.Y, 672-28+1.5) {
		t.Errorf("second row first cell = %+v", second)
	}
}

func TestDrawTableWideCellLeftAligns(t *testing.T) {
	c := newFakeCanvas()
	tl := FractionalTable(600, 800)
	p, _ := DefaultRenderer().DrawTable(c, tl, [][]string{{"A VERY LONG INVOICE NUMBER TEXT"}})
	cell := p.Cells[len(p.Cells)-1]
	if !near(cell.X, tl.ColX[0]) {
		t.Errorf("x = %v, want column start %v", cell.X, tl.ColX[0])
	}
}

func TestAnchoredTable(t *testing.T) {
	tl := AnchoredTable(
		layout.Rect{X: 70, YBottom: 600, Height: 9},
		layout.Rect{X: 170},
		layout.Rect{X: 250},
		layout.Rect{X: 350},
	)
	if tl.FontSize != 10 || tl.LineHeight != 13 {
		t.Errorf("FontSize=%v LineHeight=%v, want 10 and 13", tl.FontSize, tl.LineHeight)
	}
	wantW := []float64{82, 62, 82, 46}
	for i, w := range wantW {
		if !near(tl.ColW[i], w) {
			t.Errorf("ColW[%d] = %v, want %v", i, tl.ColW[i], w)
		}
	}
	if !near(tl.Top, 636) || !near(tl.ClearLeft, 64) || !near(tl.ClearRight, 350+46+13) {
		t.Errorf("Top=%v clear=[%v, %v]", tl.Top, tl.ClearLeft, tl.ClearRight)
	}
}
