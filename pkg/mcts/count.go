package mcts

import "math"

// ExplorationParam scales the exploration term of the UCB1 formula shared by
// both explorers. Higher values favor exploring less-visited children, lower
// values favor exploitation. Default is 1, reproducing the textbook
// reward + sqrt(2*ln(Np)/n) bound; like the teacher's ExplorationParam this
// can be tuned per problem.
var ExplorationParam float64 = 1

// SetExplorationParam sets the package-wide UCB1 exploration constant. Only
// non-negative values are accepted.
func SetExplorationParam(c float64) {
	ExplorationParam = max(0, c)
}

// CountWdl accumulates wins for each player and draws observed in a part of
// the tree. Counters stay non-negative in steady state; the solver explorer
// may hold a transient negative value inside its propagation arithmetic, but
// never stores one.
type CountWdl struct {
	WinsOne int32
	WinsTwo int32
	Draws   int32
}

// Total is the number of playouts this count represents.
func (c CountWdl) Total() int32 {
	return c.WinsOne + c.WinsTwo + c.Draws
}

// Reward is a value in [0, 1] indicating how rewarding this outcome is for
// judgingPlayer: 0 a certain loss, 1 a certain win, 0.5 a draw or an
// outcome with no observations yet. It carries no exploration term; best
// used to pick a move once search has stopped.
func (c CountWdl) Reward(judgingPlayer Player) float64 {
	total := c.Total()
	if total == 0 {
		return 0.5
	}
	wins := c.WinsOne
	if judgingPlayer == PlayerTwo {
		wins = c.WinsTwo
	}
	return (float64(wins) + float64(c.Draws)*0.5) / float64(total)
}

// Ucb is the UCB1 score balancing reward against an exploration bonus that
// shrinks as this node accumulates visits relative to its parent.
func (c CountWdl) Ucb(parentTotal float64, player Player) float64 {
	return c.Reward(player) + ExplorationParam*math.Sqrt(2*math.Log(parentTotal)/float64(c.Total()))
}

// ReportWinFor increments the win counter of player by one.
func (c *CountWdl) ReportWinFor(player Player) {
	if player == PlayerOne {
		c.WinsOne++
	} else {
		c.WinsTwo++
	}
}

// Add performs a componentwise addition in place.
func (c *CountWdl) Add(other CountWdl) {
	c.WinsOne += other.WinsOne
	c.WinsTwo += other.WinsTwo
	c.Draws += other.Draws
}

// Sub performs a componentwise subtraction in place.
func (c *CountWdl) Sub(other CountWdl) {
	c.WinsOne -= other.WinsOne
	c.WinsTwo -= other.WinsTwo
	c.Draws -= other.Draws
}

// CmpFor compares two counts by reward from player's perspective: -1 if c is
// worse, 0 if equal, 1 if c is better.
func (c CountWdl) CmpFor(other CountWdl, player Player) int {
	return cmpFloat(c.Reward(player), other.Reward(player))
}

// FromTerminal maps a terminal game state directly to a single-unit count,
// and StateMoves to a zero count (the same value UnexploredBias reports).
func (c CountWdl) FromTerminal(kind GameStateKind) CountWdl {
	switch kind {
	case StateWinPlayerOne:
		return CountWdl{WinsOne: 1}
	case StateWinPlayerTwo:
		return CountWdl{WinsTwo: 1}
	case StateDraw:
		return CountWdl{Draws: 1}
	default:
		return CountWdl{}
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
