package mcts

// Ucb is the plain UCT explorer: it never proves an outcome, always
// selecting and backpropagating via classic UCB1 over CountWdl.
type Ucb[M MoveLike, G Game[M, G]] struct {
	moveBuf []M
}

// NewUcb creates a fresh UCT explorer.
func NewUcb[M MoveLike, G Game[M, G]]() *Ucb[M, G] {
	return &Ucb[M, G]{}
}

func (u *Ucb[M, G]) Bias(game G, rng Rng) CountWdl {
	return randomPlay(game, &u.moveBuf, rng)
}

func (u *Ucb[M, G]) UnexploredBias() CountWdl {
	return CountWdl{}
}

// Reevaluate bumps every non-zero counter by one, preserving the UCB signal
// for a node whose distinct outcomes have already been observed, without
// fabricating wins for outcomes never seen.
func (u *Ucb[M, G]) Reevaluate(_ G, evaluation *CountWdl) CountWdl {
	bump := func(i int32) int32 {
		if i == 0 {
			return 0
		}
		return 1
	}
	delta := CountWdl{
		WinsOne: bump(evaluation.WinsOne),
		WinsTwo: bump(evaluation.WinsTwo),
		Draws:   bump(evaluation.Draws),
	}
	evaluation.Add(delta)
	return delta
}

func (u *Ucb[M, G]) SelectedChildPos(parentEval CountWdl, childEvals []CountWdl, selectingPlayer Player) (int, bool) {
	if len(childEvals) == 0 {
		return 0, false
	}
	best := 0
	bestScore := childEvals[0].Ucb(float64(parentEval.Total()), selectingPlayer)
	for i := 1; i < len(childEvals); i++ {
		score := childEvals[i].Ucb(float64(parentEval.Total()), selectingPlayer)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best, true
}

func (u *Ucb[M, G]) Update(old CountWdl, _ []SiblingEval[CountWdl], delta CountWdl, _ Player) (CountWdl, CountWdl) {
	old.Add(delta)
	return old, delta
}

func (u *Ucb[M, G]) InitialDelta(newEval CountWdl) CountWdl {
	return newEval
}

func (u *Ucb[M, G]) IsSolved(CountWdl) bool {
	return false
}
