package mcts

import (
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetSeedGeneratorFn(func() int64 { return 42 })
	fmt.Printf("using seed %d\n", SeedGeneratorFn())
	os.Exit(m.Run())
}

func newRng() *rand.Rand {
	return rand.New(rand.NewSource(SeedGeneratorFn()))
}

// TestSolverSolvesNim checks the solver converges to the known-correct
// winner for a range of starting pile sizes, and that the root becomes
// solved (Playout eventually starts returning false).
func TestSolverSolvesNim(t *testing.T) {
	for stones := 1; stones <= 16; stones++ {
		search := newNimSolverSearch(stones)
		rng := newRng()

		ran := 0
		for i := 0; i < 10000; i++ {
			if !search.Playout(rng) {
				break
			}
			ran++
		}

		eval := search.Evaluation()
		require.True(t, eval.IsSolved(), "stones=%d: expected solved root after %d playouts, got %+v", stones, ran, eval)
		want := nimWinner(stones)
		if eval.Kind == Win {
			require.Equal(t, want, eval.Winner, "stones=%d: unexpected winner", stones)
		}
		require.NotEqual(t, Draw, eval.Kind, "stones=%d: nim never draws, got Draw", stones)

		require.False(t, search.Playout(rng), "stones=%d: Playout returned true after root was solved", stones)
	}
}

// TestSolverBestMoveIsLegalAndCorrect checks that once solved, the cached
// best move actually leads to a position consistent with the proof: from a
// winning position there exists a move into a position lost for the
// opponent.
func TestSolverBestMoveIsLegalAndCorrect(t *testing.T) {
	stones := 10 // not a multiple of 4: a win for PlayerOne
	search := newNimSolverSearch(stones)
	rng := newRng()
	for i := 0; i < 10000 && search.Playout(rng); i++ {
	}

	move, ok := search.BestMove()
	require.True(t, ok, "expected a best move for a non-terminal root")
	require.True(t, move >= 1 && move <= 3 && move <= stones, "best move %d is not a legal Nim move from %d stones", move, stones)
	remaining := stones - move
	// nimWinner labels the side to move PlayerOne; after PlayerOne's move the
	// opponent is to move, so a winning move leaves a pile that nimWinner
	// reports as won by the second mover (PlayerTwo).
	require.Equal(t, PlayerTwo, nimWinner(remaining), "best move %d leaves %d stones, which nimWinner should report as lost for the player to move", move, remaining)
}

// TestSolverTerminalRoot checks that a Search rooted at an already-terminal
// position reports a solved, correct evaluation immediately, has no legal
// best move, and that Playout is a no-op.
func TestSolverTerminalRoot(t *testing.T) {
	search := newNimSolverSearch(0) // PlayerOne has nothing to take: PlayerTwo just won
	eval := search.Evaluation()
	require.True(t, eval.IsSolved())
	require.Equal(t, Win, eval.Kind)
	require.Equal(t, PlayerTwo, eval.Winner)

	_, ok := search.BestMove()
	require.False(t, ok, "expected no best move at a terminal root")

	rng := newRng()
	require.False(t, search.Playout(rng), "expected Playout to report false at an already-solved root")
	require.Equal(t, 1, search.NumNodes(), "expected the arena to stay at a single node")
}

// TestSolverArenaIsAppendOnly checks that NumNodes and NumLinks never
// decrease across playouts.
func TestSolverArenaIsAppendOnly(t *testing.T) {
	search := newNimSolverSearch(13)
	rng := newRng()

	prevNodes, prevLinks := search.NumNodes(), search.NumLinks()
	for i := 0; i < 500; i++ {
		if !search.Playout(rng) {
			break
		}
		require.GreaterOrEqual(t, search.NumNodes(), prevNodes, "NumNodes decreased")
		require.GreaterOrEqual(t, search.NumLinks(), prevLinks, "NumLinks decreased")
		prevNodes, prevLinks = search.NumNodes(), search.NumLinks()
	}
}

// branchyGame is a random game with no natural end, used to
// smoke-test the plain UCT explorer the way a real game would exercise it:
// a fixed branching factor and a depth cap after which the game is forced
// to a uniformly random win/loss/draw outcome.
type branchyGame struct {
	depth int
	rng   *rand.Rand
}

const branchyDepthCap = 6
const branchyBranchFactor = 4

func newBranchyGame(rng *rand.Rand) *branchyGame {
	return &branchyGame{rng: rng}
}

func (g *branchyGame) Clone() *branchyGame {
	return &branchyGame{depth: g.depth, rng: g.rng}
}

func (g *branchyGame) State(movesBuf []int) GameState[int] {
	movesBuf = movesBuf[:0]
	if g.depth >= branchyDepthCap {
		switch g.rng.Intn(3) {
		case 0:
			return WinOneState[int]()
		case 1:
			return WinTwoState[int]()
		default:
			return DrawState[int]()
		}
	}
	for i := 0; i < branchyBranchFactor; i++ {
		movesBuf = append(movesBuf, i)
	}
	return MovesState(movesBuf)
}

func (g *branchyGame) Play(int) {
	g.depth++
}

func (g *branchyGame) CurrentPlayer() Player {
	if g.depth%2 == 0 {
		return PlayerOne
	}
	return PlayerTwo
}

type dummyUcbSearch = Search[int, *branchyGame, CountWdl, CountWdl, *Ucb[int, *branchyGame]]

// TestUcbDummySearch smoke-tests the plain UCT explorer over many playouts,
// the way the teacher's dummy random game exercises its engine: expects a
// nonempty tree and a legal best move, with reward always in [0, 1].
func TestUcbDummySearch(t *testing.T) {
	rng := newRng()
	search := NewSearch[int, *branchyGame, CountWdl, CountWdl, *Ucb[int, *branchyGame]](newBranchyGame(rng), NewUcb[int, *branchyGame]())

	for i := 0; i < 5000; i++ {
		search.Playout(rng)
	}

	require.Greater(t, search.NumNodes(), 1, "expected tree to grow past the root")
	move, ok := search.BestMove()
	require.True(t, ok, "expected a best move")
	require.True(t, move >= 0 && move < branchyBranchFactor, "best move %d out of range", move)

	eval := search.Evaluation()
	reward := eval.Reward(PlayerOne)
	require.True(t, reward >= 0 && reward <= 1, "reward %f out of [0,1]", reward)
}
