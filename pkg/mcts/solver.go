package mcts

// SolvedBias produces the initial evaluation for a freshly expanded node
// under the solver explorer. RandomPlayout satisfies it by simulating the
// game; a domain-specific bias may instead inspect the position directly and
// return a solved Win/Draw when it can prove one cheaply (e.g. "current
// player has an immediate winning move").
type SolvedBias[M MoveLike, G Game[M, G]] interface {
	Bias(game G, rng Rng) CountWdlSolved
}

// UcbSolver is the weak-solving explorer: it tracks CountWdlSolved
// evaluations and, once enough of a subtree is explored, upgrades
// statistical estimates into proven Win/Draw facts that freeze further
// statistical updates for that node. Bias supplies the evaluation of a
// freshly expanded leaf.
type UcbSolver[M MoveLike, G Game[M, G], B SolvedBias[M, G]] struct {
	bias B
}

// NewUcbSolver creates a solver explorer using the given bias.
func NewUcbSolver[M MoveLike, G Game[M, G], B SolvedBias[M, G]](bias B) *UcbSolver[M, G, B] {
	return &UcbSolver[M, G, B]{bias: bias}
}

func (s *UcbSolver[M, G, B]) Bias(game G, rng Rng) CountWdlSolved {
	return s.bias.Bias(game, rng)
}

func (s *UcbSolver[M, G, B]) UnexploredBias() CountWdlSolved {
	return UndecidedWith(CountWdl{})
}

// Reevaluate must never be called: the driver never re-lands on a solved or
// fully expanded node under the solver, since selection skips solved
// children and expansion always creates a fresh child. Reaching this is a
// programmer error.
func (s *UcbSolver[M, G, B]) Reevaluate(_ G, _ *CountWdlSolved) CountWdlSolvedDelta {
	panic("mcts: solver explorer should never revisit the same leaf twice")
}

func (s *UcbSolver[M, G, B]) SelectedChildPos(parentEval CountWdlSolved, childEvals []CountWdlSolved, selectingPlayer Player) (int, bool) {
	best := -1
	bestScore := 0.0
	parentTotal := float64(parentEval.Total())
	for i, eval := range childEvals {
		if eval.IsSolved() {
			continue
		}
		score := eval.Count.Ucb(parentTotal, selectingPlayer)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (s *UcbSolver[M, G, B]) InitialDelta(newEval CountWdlSolved) CountWdlSolvedDelta {
	return CountWdlSolvedDelta{PropagatedEval: newEval, PreviousCount: CountWdl{}}
}

func (s *UcbSolver[M, G, B]) IsSolved(eval CountWdlSolved) bool {
	return eval.IsSolved()
}

// Update implements the weak-solver backpropagation procedure of
// spec.md §4.4, in three ordered steps: (1) the choosing player can force a
// win, (2) every other child resolves against the choosing player, or
// (3) fall back to incremental statistical propagation.
func (s *UcbSolver[M, G, B]) Update(old CountWdlSolved, siblingEvals []SiblingEval[CountWdlSolved], delta CountWdlSolvedDelta, choosingPlayer Player) (CountWdlSolved, CountWdlSolvedDelta) {
	previousCount := old.IntoCount()
	propagated := delta.PropagatedEval
	previousChildCount := delta.PreviousCount

	// 1. The choosing player can force a win: she will pick this child.
	if propagated.Kind == Win && propagated.Winner == choosingPlayer {
		return propagated, CountWdlSolvedDelta{PropagatedEval: propagated, PreviousCount: previousCount}
	}

	// 2. All children resolved against the choosing player: a loss unless
	// some sibling is a draw.
	loss := WinFor(choosingPlayer.Opponent())
	if propagated.IsSolved() {
		acc, resolved := solvedResult(propagated, siblingEvals, loss)
		if resolved {
			return acc, CountWdlSolvedDelta{PropagatedEval: acc, PreviousCount: previousCount}
		}
	}

	// 3. Statistical propagation: compute the incremental count contributed
	// by this child since its last observation.
	var increment CountWdl
	switch propagated.Kind {
	case Win:
		if propagated.Winner == PlayerOne {
			increment = CountWdl{WinsOne: previousChildCount.Total() + propagated.Total()}
		} else {
			increment = CountWdl{WinsTwo: previousChildCount.Total() + propagated.Total()}
		}
		increment.Sub(previousChildCount)
	case Draw:
		increment = CountWdl{Draws: previousChildCount.Total() + propagated.Total()}
		increment.Sub(previousChildCount)
	default: // Undecided
		increment = propagated.Count
	}

	updated := old
	if old.Kind == Undecided {
		count := old.Count
		count.Add(increment)
		updated = UndecidedWith(count)
	}
	// If old is already solved, its evaluation is frozen, but the increment
	// is still propagated so ancestors not yet solved keep accumulating
	// statistics correctly.
	return updated, CountWdlSolvedDelta{
		PropagatedEval: UndecidedWith(increment),
		PreviousCount:  previousCount,
	}
}

// solvedResult checks whether every sibling evaluation resolves against the
// choosing player (is either Draw or loss, never unsolved or a win for the
// choosing player). ok is false if any sibling is unexplored.
func solvedResult(propagated CountWdlSolved, siblingEvals []SiblingEval[CountWdlSolved], loss CountWdlSolved) (CountWdlSolved, bool) {
	acc := propagated
	for _, sib := range siblingEvals {
		if !sib.Present {
			return CountWdlSolved{}, false
		}
		switch {
		case sib.Eval.Kind == Draw:
			acc = DrawSolved()
		case sib.Eval.Kind == loss.Kind && sib.Eval.Winner == loss.Winner:
			// Keeps current acc (stays a loss, or stays a draw if one was
			// already found).
		default:
			return CountWdlSolved{}, false
		}
	}
	return acc, true
}
