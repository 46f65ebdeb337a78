package mcts

// Search owns the root game, the arena tree, the explorer strategy, the
// cached best move, and the scratch buffers reused across playouts. A
// sequence of Playout calls is deterministic given the same rng stream,
// game, and explorer: every stochastic decision routes through rng.
type Search[M MoveLike, G Game[M, G], E Evaluation[E], D any, X Explorer[M, G, E, D]] struct {
	game     G
	tree     *Tree[M, E]
	explorer X

	bestLinkSlot int // -1 if the root has no children yet

	moveBuf        []M
	candidateSlots []int
	path           []int
}

// NewSearch constructs a Search rooted at game, using explorer to bias and
// backpropagate evaluations. If the root is already terminal, its
// evaluation is fixed accordingly; otherwise it starts at the explorer's
// UnexploredBias. The cached best move is the first legal move, if any, so
// BestMove returns a legal move even before the first playout.
func NewSearch[M MoveLike, G Game[M, G], E Evaluation[E], D any, X Explorer[M, G, E, D]](game G, explorer X) *Search[M, G, E, D, X] {
	var moveBuf []M
	state := game.State(moveBuf)
	moveBuf = state.Moves

	var rootEval E
	if state.Terminal() {
		rootEval = rootEval.FromTerminal(state.Kind)
	} else {
		rootEval = explorer.UnexploredBias()
	}

	tree := newTree[M, E](rootEval, moveBuf)
	bestSlot := -1
	if tree.NumLinks() > 0 {
		bestSlot = 0
	}

	return &Search[M, G, E, D, X]{
		game:         game,
		tree:         tree,
		explorer:     explorer,
		bestLinkSlot: bestSlot,
		moveBuf:      moveBuf[:0],
		path:         make([]int, 0, 16),
	}
}

// WithPlayouts constructs a Search and immediately runs up to numPlayouts
// playouts, stopping early the first time Playout returns false.
func WithPlayouts[M MoveLike, G Game[M, G], E Evaluation[E], D any, X Explorer[M, G, E, D]](game G, explorer X, numPlayouts int, rng Rng) *Search[M, G, E, D, X] {
	s := NewSearch[M, G, E, D, X](game, explorer)
	for i := 0; i < numPlayouts; i++ {
		if !s.Playout(rng) {
			break
		}
	}
	return s
}

// selection is the result of descending the tree from root: the node
// reached, a game clone representing its position, and whether that node
// still has at least one unexpanded child link.
type selection[G any] struct {
	nodeIndex             int
	game                  G
	hasUnexploredChildren bool
}

// Playout runs one cycle of selection, expansion, bias/simulation, and
// backpropagation. It returns false without changing the tree if the root's
// evaluation is already solved; true otherwise.
func (s *Search[M, G, E, D, X]) Playout(rng Rng) bool {
	if s.explorer.IsSolved(s.tree.evaluation(rootIndex)) {
		return false
	}

	sel := s.selectUnexploredNode()

	var player Player
	var delta D

	if sel.hasUnexploredChildren {
		newIndex := s.expand(sel.nodeIndex, sel.game, rng)
		player = sel.game.CurrentPlayer()

		if !s.explorer.IsSolved(s.tree.evaluation(newIndex)) {
			bias := s.explorer.Bias(sel.game, rng)
			s.tree.setEvaluation(newIndex, bias)
		}
		delta = s.explorer.InitialDelta(s.tree.evaluation(newIndex))
		s.backpropagate(newIndex, s.path, delta, player)
	} else {
		player = sel.game.CurrentPlayer()
		eval := s.tree.evaluation(sel.nodeIndex)
		delta = s.explorer.Reevaluate(sel.game, &eval)
		s.tree.setEvaluation(sel.nodeIndex, eval)
		s.backpropagate(sel.nodeIndex, s.path[:len(s.path)-1], delta, player)
	}

	s.updateBestMove()
	return true
}

// selectUnexploredNode descends from root along the explorer's
// SelectedChildPos until it finds a node with at least one unexpanded link,
// or a node with no selectable child (terminal, or every child solved). The
// sequence of visited node indices is recorded into s.path, in order.
func (s *Search[M, G, E, D, X]) selectUnexploredNode() selection[G] {
	s.path = s.path[:0]
	current := rootIndex
	game := s.game.Clone()
	s.path = append(s.path, current)

	for !s.tree.hasUnexploredChildren(current) {
		children := s.tree.children(current)
		childEvals := make([]E, len(children))
		for i, l := range children {
			childEvals[i] = s.tree.evaluation(l.child)
		}

		pos, ok := s.explorer.SelectedChildPos(s.tree.evaluation(current), childEvals, game.CurrentPlayer())
		if !ok {
			return selection[G]{nodeIndex: current, game: game, hasUnexploredChildren: false}
		}

		chosen := children[pos]
		game.Play(chosen.move)
		current = chosen.child
		s.path = append(s.path, current)
	}

	return selection[G]{nodeIndex: current, game: game, hasUnexploredChildren: true}
}

// expand picks one unexpanded link of the node at nodeIndex uniformly at
// random, plays its move on game, and materializes a new child node in the
// arena. Returns the new node's index.
func (s *Search[M, G, E, D, X]) expand(nodeIndex int, game G, rng Rng) int {
	children := s.tree.children(nodeIndex)
	s.candidateSlots = s.candidateSlots[:0]
	for slot, l := range children {
		if !l.explored() {
			s.candidateSlots = append(s.candidateSlots, slot)
		}
	}
	slot := s.candidateSlots[rng.Intn(len(s.candidateSlots))]
	move := children[slot].move

	game.Play(move)
	state := game.State(s.moveBuf)
	s.moveBuf = state.Moves

	var eval E
	eval = eval.FromTerminal(state.Kind)

	return s.tree.add(nodeIndex, slot, eval, state.Moves)
}

// backpropagate walks ancestors from the one closest to the changed child up
// to the root, applying Explorer.Update and flipping the player at each
// step so every ancestor sees the player who chooses at its own position.
// ancestors is ordered root-first (as recorded by selectUnexploredNode);
// childIndex is the node index of the child whose delta originated this
// call.
func (s *Search[M, G, E, D, X]) backpropagate(childIndex int, ancestors []int, delta D, player Player) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		current := ancestors[i]
		player.Flip()

		old := s.tree.evaluation(current)
		siblings := s.tree.siblingEvaluations(current, childIndex)
		updated, outgoing := s.explorer.Update(old, siblings, delta, player)
		s.tree.setEvaluation(current, updated)

		delta = outgoing
		childIndex = current
	}
}

// updateBestMove re-scans the root's children: a candidate replaces the
// current best if either its evaluation strictly beats the current best's
// (from the root player's perspective), or it is the current best and its
// evaluation has not gotten worse. Among evaluations that compare equal this
// keeps the earliest-found best, giving "earliest discovered win" / "latest
// discovered forced loss" preference.
func (s *Search[M, G, E, D, X]) updateBestMove() {
	children := s.tree.children(rootIndex)
	if len(children) == 0 {
		return
	}
	if s.bestLinkSlot < 0 {
		s.bestLinkSlot = 0
	}

	currentPlayer := s.game.CurrentPlayer()
	unexploredBias := s.explorer.UnexploredBias()

	evalAt := func(slot int) E {
		l := children[slot]
		if l.explored() {
			return s.tree.evaluation(l.child)
		}
		return unexploredBias
	}

	bestEval := evalAt(s.bestLinkSlot)
	for slot := range children {
		candidate := evalAt(slot)
		cmp := candidate.CmpFor(bestEval, currentPlayer)
		var replace bool
		if slot == s.bestLinkSlot {
			replace = cmp >= 0
		} else {
			replace = cmp > 0
		}
		if replace {
			s.bestLinkSlot = slot
			bestEval = candidate
		}
	}
}

// BestMove returns the cached best move, or false if the root has no legal
// moves (the root position is terminal).
func (s *Search[M, G, E, D, X]) BestMove() (M, bool) {
	var zero M
	if s.bestLinkSlot < 0 {
		return zero, false
	}
	children := s.tree.children(rootIndex)
	return children[s.bestLinkSlot].move, true
}

// Evaluation returns the root's current evaluation.
func (s *Search[M, G, E, D, X]) Evaluation() E {
	return s.tree.evaluation(rootIndex)
}

// MoveEval pairs a move with the evaluation of the root child it leads to.
type MoveEval[M MoveLike, E any] struct {
	Move M
	Eval E
}

// EvalByMove reports, for each root child, its move and evaluation,
// substituting the explorer's UnexploredBias for a link that has not been
// expanded yet.
func (s *Search[M, G, E, D, X]) EvalByMove() []MoveEval[M, E] {
	children := s.tree.children(rootIndex)
	out := make([]MoveEval[M, E], len(children))
	unexploredBias := s.explorer.UnexploredBias()
	for i, l := range children {
		eval := unexploredBias
		if l.explored() {
			eval = s.tree.evaluation(l.child)
		}
		out[i] = MoveEval[M, E]{Move: l.move, Eval: eval}
	}
	return out
}

// NumNodes is the number of nodes currently in the arena.
func (s *Search[M, G, E, D, X]) NumNodes() int {
	return s.tree.NumNodes()
}

// NumLinks is the number of links currently in the arena.
func (s *Search[M, G, E, D, X]) NumLinks() int {
	return s.tree.NumLinks()
}

// Game returns the root game.
func (s *Search[M, G, E, D, X]) Game() G {
	return s.game
}
