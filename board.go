package viamconnect4

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	StandardColumns = 7
	StandardRows    = 6
	connectLength   = 4
)

// Mark is the content of a single cell.
type Mark int8

const (
	Empty Mark = iota
	PlayerA
	PlayerB
)

// Red moves first and maps to PlayerA, yellow to PlayerB.
const (
	Red    = PlayerA
	Yellow = PlayerB
)

func (m Mark) Opponent() Mark {
	switch m {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return Empty
	}
}

func (m Mark) String() string {
	switch m {
	case PlayerA:
		return "red"
	case PlayerB:
		return "yellow"
	default:
		return "empty"
	}
}

func (m Mark) symbol() byte {
	switch m {
	case PlayerA:
		return 'X'
	case PlayerB:
		return 'O'
	default:
		return '.'
	}
}

// Board is a grid that fills bottom to top. Row 0 is the bottom row.
type Board struct {
	columns, rows int
	cells         []Mark // column-major
	heights       []int
	order         []int
}

func NewBoard(columns, rows int) *Board {
	b := &Board{
		columns: columns,
		rows:    rows,
		cells:   make([]Mark, columns*rows),
		heights: make([]int, columns),
		order:   centerOut(columns),
	}
	return b
}

func NewStandardBoard() *Board {
	return NewBoard(StandardColumns, StandardRows)
}

// centerOut orders columns by distance from the middle, left first on ties.
func centerOut(columns int) []int {
	order := make([]int, columns)
	for i := range order {
		order[i] = i
	}
	dist := func(c int) int { return abs(2*c - (columns - 1)) }
	sort.SliceStable(order, func(i, j int) bool {
		return dist(order[i]) < dist(order[j])
	})
	return order
}

func (b *Board) Columns() int { return b.columns }
func (b *Board) Rows() int    { return b.rows }

func (b *Board) At(column, row int) Mark {
	if column < 0 || column >= b.columns || row < 0 || row >= b.rows {
		return Empty
	}
	return b.cells[column*b.rows+row]
}

// Height is the number of marks in column, or 0 for a column off the board.
func (b *Board) Height(column int) int {
	if column < 0 || column >= b.columns {
		return 0
	}
	return b.heights[column]
}

// Set drops mark into column. The board is unchanged on error.
func (b *Board) Set(column int, mark Mark) error {
	if column < 0 || column >= b.columns {
		return errors.Wrapf(ErrInvalidColumn, "column %d", column)
	}
	if mark != PlayerA && mark != PlayerB {
		return errors.Errorf("cannot place %v", mark)
	}
	if b.heights[column] >= b.rows {
		return errors.Wrapf(ErrColumnFull, "column %d", column)
	}
	b.place(column, mark)
	return nil
}

func (b *Board) place(column int, mark Mark) {
	b.cells[column*b.rows+b.heights[column]] = mark
	b.heights[column]++
}

// Undo removes the top mark of column.
func (b *Board) Undo(column int) error {
	if column < 0 || column >= b.columns {
		return errors.Wrapf(ErrInvalidColumn, "column %d", column)
	}
	if b.heights[column] == 0 {
		return errors.Errorf("column %d is empty", column)
	}
	b.unplace(column)
	return nil
}

func (b *Board) unplace(column int) {
	b.heights[column]--
	b.cells[column*b.rows+b.heights[column]] = Empty
}

func (b *Board) IsFull() bool {
	for _, h := range b.heights {
		if h < b.rows {
			return false
		}
	}
	return true
}

// LegalMoves returns the non-full columns, center columns first.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, b.columns)
	for _, c := range b.order {
		if b.heights[c] < b.rows {
			moves = append(moves, c)
		}
	}
	return moves
}

var directions = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal /
	{1, -1}, // diagonal \
}

// Winner returns the mark with four in a row, or Empty.
func (b *Board) Winner() Mark {
	for c := 0; c < b.columns; c++ {
		for r := 0; r < b.heights[c]; r++ {
			m := b.At(c, r)
			for _, d := range directions {
				if b.runFrom(c, r, d[0], d[1], m) >= connectLength {
					return m
				}
			}
		}
	}
	return Empty
}

func (b *Board) runFrom(column, row, dc, dr int, m Mark) int {
	n := 0
	for b.At(column+n*dc, row+n*dr) == m && n < connectLength {
		n++
	}
	return n
}

// connectsAt reports whether the mark at (column, row) is part of four in a row.
func (b *Board) connectsAt(column, row int) bool {
	m := b.At(column, row)
	if m == Empty {
		return false
	}
	for _, d := range directions {
		n := 1
		for i := 1; b.At(column+i*d[0], row+i*d[1]) == m; i++ {
			n++
		}
		for i := 1; b.At(column-i*d[0], row-i*d[1]) == m; i++ {
			n++
		}
		if n >= connectLength {
			return true
		}
	}
	return false
}

func (b *Board) Count(m Mark) int {
	n := 0
	for _, cell := range b.cells {
		if cell == m {
			n++
		}
	}
	return n
}

// Turn derives who moves next from the token counts: red moves unless red
// has one more token than yellow.
func (b *Board) Turn() (Mark, error) {
	diff := b.Count(Red) - b.Count(Yellow)
	switch {
	case diff == 0 || diff == -1:
		return Red, nil
	case diff == 1:
		return Yellow, nil
	default:
		return Empty, errors.Wrapf(ErrInconsistentPosition, "red %d yellow %d", b.Count(Red), b.Count(Yellow))
	}
}

func (b *Board) Copy() *Board {
	n := &Board{
		columns: b.columns,
		rows:    b.rows,
		cells:   append([]Mark(nil), b.cells...),
		heights: append([]int(nil), b.heights...),
		order:   b.order,
	}
	return n
}

func (b *Board) Equal(o *Board) bool {
	if b.columns != o.columns || b.rows != o.rows {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board top row first, X for red and O for yellow.
func (b *Board) String() string {
	var sb strings.Builder
	for r := b.rows - 1; r >= 0; r-- {
		for c := 0; c < b.columns; c++ {
			sb.WriteByte(b.At(c, r).symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard reads the String format. Rows are listed top first and may be
// separated by newlines or slashes.
func ParseBoard(s string) (*Board, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "/", "\n"))
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, errors.New("empty board")
	}
	columns, rows := len(lines[0]), len(lines)
	b := NewBoard(columns, rows)
	for r := 0; r < rows; r++ {
		line := lines[rows-1-r]
		if len(line) != columns {
			return nil, errors.Errorf("row %d has %d cells, want %d", r, len(line), columns)
		}
		for c := 0; c < columns; c++ {
			var m Mark
			switch line[c] {
			case 'X', 'x', 'R', 'r':
				m = PlayerA
			case 'O', 'o', 'Y', 'y':
				m = PlayerB
			case '.', '-', '_':
				continue
			default:
				return nil, errors.Errorf("bad cell %q", line[c])
			}
			if b.heights[c] != r {
				return nil, errors.Errorf("floating token at column %d row %d", c, r)
			}
			b.place(c, m)
		}
	}
	return b, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
