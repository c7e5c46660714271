package viamconnect4

// Evaluate scores b from player's point of view: open threes, open twos and
// center column tokens for player minus the same for the opponent.
func Evaluate(b *Board, player Mark, w Weights) int {
	opponent := player.Opponent()
	score := 0

	for c := 0; c < b.columns; c++ {
		for r := 0; r < b.rows; r++ {
			for _, d := range directions {
				endC, endR := c+(connectLength-1)*d[0], r+(connectLength-1)*d[1]
				if endC < 0 || endC >= b.columns || endR < 0 || endR >= b.rows {
					continue
				}
				score += scoreWindow(b, c, r, d[0], d[1], player, opponent, w)
			}
		}
	}

	for _, c := range centerColumns(b.columns) {
		for r := 0; r < b.heights[c]; r++ {
			switch b.At(c, r) {
			case player:
				score += w.Center
			case opponent:
				score -= w.Center
			}
		}
	}
	return score
}

func scoreWindow(b *Board, c, r, dc, dr int, player, opponent Mark, w Weights) int {
	mine, theirs, empty := 0, 0, 0
	for i := 0; i < connectLength; i++ {
		switch b.At(c+i*dc, r+i*dr) {
		case player:
			mine++
		case opponent:
			theirs++
		default:
			empty++
		}
	}

	switch {
	case mine == 3 && empty == 1:
		return w.Three
	case mine == 2 && empty == 2:
		return w.Two
	case theirs == 3 && empty == 1:
		return -w.Three
	case theirs == 2 && empty == 2:
		return -w.Two
	}
	return 0
}

func centerColumns(columns int) []int {
	if columns%2 == 1 {
		return []int{columns / 2}
	}
	return []int{columns/2 - 1, columns / 2}
}
