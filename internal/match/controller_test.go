package match_test

import (
	"context"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/match/mocks"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func aiSide(h eval.Heuristic, depth int) match.SideConfig {
	return match.SideConfig{Kind: match.AI, Algorithm: bot.AlphaBeta, Heuristic: h, DepthLimit: depth}
}

func threeByThree() game.Settings {
	return game.Settings{Size: 3, WinLength: 3}
}

func TestControllerSelfPlayTies(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	cfg := match.Config{Board: threeByThree(), X: aiSide(eval.LinePotential, 9), O: aiSide(eval.LinePotential, 9)}

	reporter.EXPECT().GameStarted(gomock.Any(), cfg, gomock.Any()).Times(1)
	reporter.EXPECT().MovePlayed(gomock.Any(), gomock.Any(), gomock.Any()).Times(9)
	reporter.EXPECT().GameConcluded(gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, stats match.GameStatistics, b *game.Board) {
			assert.Equal(t, game.Tie, stats.Result.Status)
			assert.True(t, b.IsFull())
		}).Times(1)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(10)

	c, err := match.NewController(cfg, bot.NewEngine(), match.WithID("m-1"), match.WithReporter(reporter), match.WithPublisher(publisher))
	require.NoError(t, err)

	stats, err := c.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, game.Result{Status: game.Tie}, stats.Result)
	assert.Equal(t, 9, stats.MoveCount)
	require.Len(t, stats.Moves, 9)

	total := 0
	for i, m := range stats.Moves {
		assert.Equal(t, i+1, m.Number)
		assert.Equal(t, match.AI, m.Kind)
		require.NotNil(t, m.Recommended)
		assert.Equal(t, m.Move, *m.Recommended)
		total += m.Search.StatesVisited
	}
	assert.Equal(t, total, stats.StatesVisited)
	assert.Equal(t, game.PlayerX, stats.Moves[0].Mark)
	assert.Equal(t, game.PlayerO, stats.Moves[1].Mark)

	snap := c.Snapshot()
	assert.Equal(t, "m-1", snap.ID)
	assert.Equal(t, game.Tie, snap.Status)
	assert.Empty(t, snap.Next)
	assert.Equal(t, 9, snap.MoveCount)

	_, err = c.Step(context.Background())
	assert.ErrorIs(t, err, match.ErrGameOver)
}

func TestControllerRejectsIllegalHumanMove(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockMoveSource(ctrl)

	cfg := match.Config{
		Board: game.Settings{Size: 3, WinLength: 3, BlockCount: 1, Blocks: []game.Coord{{Row: 0, Col: 0}}},
		X:     match.SideConfig{Kind: match.Human, Algorithm: bot.AlphaBeta, Heuristic: eval.LinePotential, DepthLimit: 2},
		O:     aiSide(eval.LinePotential, 2),
	}

	gomock.InOrder(
		source.EXPECT().NextMove(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, turn match.HumanTurn) (game.Coord, error) {
				assert.Equal(t, game.PlayerX, turn.Mark)
				assert.Nil(t, turn.Rejected)
				assert.Nil(t, turn.Recommendation)
				return game.Coord{Row: 0, Col: 0}, nil
			}),
		source.EXPECT().NextMove(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, turn match.HumanTurn) (game.Coord, error) {
				assert.ErrorIs(t, turn.Rejected, game.ErrIllegalMove)
				return game.Coord{Row: 7, Col: 1}, nil
			}),
		source.EXPECT().NextMove(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, turn match.HumanTurn) (game.Coord, error) {
				assert.ErrorIs(t, turn.Rejected, game.ErrIllegalMove)
				return game.Coord{Row: 1, Col: 1}, nil
			}),
	)

	c, err := match.NewController(cfg, bot.NewEngine(), match.WithMoveSource(source))
	require.NoError(t, err)

	ms, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 1, Col: 1}, ms.Move)
	assert.Equal(t, match.Human, ms.Kind)
	assert.NotNil(t, ms.Recommended)
	assert.Positive(t, ms.Search.StatesVisited)

	snap := c.Snapshot()
	assert.Equal(t, game.PlayerX, snap.Board[1][1])
	assert.Equal(t, game.Block, snap.Board[0][0])
	assert.Equal(t, game.PlayerO, snap.Next)

	// O is an AI and needs no input.
	ms, err = c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.PlayerO, ms.Mark)
	assert.Equal(t, match.AI, ms.Kind)
}

func TestControllerRecommendsMoveToHuman(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockMoveSource(ctrl)
	calc := mocks.NewMockMoveCalculator(ctrl)

	cfg := match.Config{
		Board:     threeByThree(),
		X:         match.SideConfig{Kind: match.Human, Heuristic: eval.Material, DepthLimit: 3},
		O:         aiSide(eval.Material, 3),
		Recommend: true,
	}

	recommended := game.Coord{Row: 2, Col: 2}
	calc.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(bot.Outcome{Move: recommended, HasMove: true, Score: 1.5})
	source.EXPECT().NextMove(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, turn match.HumanTurn) (game.Coord, error) {
			require.NotNil(t, turn.Recommendation)
			assert.Equal(t, recommended, *turn.Recommendation)
			assert.Equal(t, 9, len(turn.Board.EmptyCells()))
			return game.Coord{Row: 0, Col: 1}, nil
		})

	c, err := match.NewController(cfg, calc, match.WithMoveSource(source))
	require.NoError(t, err)

	ms, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 0, Col: 1}, ms.Move)
	assert.Equal(t, recommended, *ms.Recommended)
	assert.Equal(t, 1.5, ms.Score)
}

func TestControllerPassesDeadlineAndSideSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockMoveCalculator(ctrl)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	x := aiSide(eval.Material, 4)
	x.Algorithm = bot.Minimax
	x.MoveTime = 2 * time.Second
	o := aiSide(eval.LinePotential, 6)

	gomock.InOrder(
		calc.EXPECT().Search(gomock.Any(), gomock.Any(), bot.Request{
			Algorithm: bot.Minimax, Heuristic: eval.Material, DepthLimit: 4, Deadline: now.Add(2 * time.Second), Mark: game.PlayerX,
		}).Return(bot.Outcome{Move: game.Coord{Row: 0, Col: 0}, HasMove: true}),
		calc.EXPECT().Search(gomock.Any(), gomock.Any(), bot.Request{
			Algorithm: bot.AlphaBeta, Heuristic: eval.LinePotential, DepthLimit: 6, Mark: game.PlayerO,
		}).Return(bot.Outcome{Move: game.Coord{Row: 1, Col: 1}, HasMove: true}),
	)

	c, err := match.NewController(match.Config{Board: threeByThree(), X: x, O: o}, calc, match.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = c.Step(context.Background())
	require.NoError(t, err)
	_, err = c.Step(context.Background())
	require.NoError(t, err)
}

func TestControllerNoMoveFromSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockMoveCalculator(ctrl)
	calc.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(bot.Outcome{})

	c, err := match.NewController(match.Config{Board: threeByThree(), X: aiSide(eval.Material, 1), O: aiSide(eval.Material, 1)}, calc)
	require.NoError(t, err)

	_, err = c.Step(context.Background())
	assert.ErrorIs(t, err, match.ErrNoMove)
	assert.Equal(t, 0, c.Statistics().MoveCount)
}

func TestControllerPropagatesMoveSourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockMoveSource(ctrl)
	errGone := errors.New("player left")
	source.EXPECT().NextMove(gomock.Any(), gomock.Any()).Return(game.Coord{}, errGone)

	cfg := match.Config{Board: threeByThree(), X: match.SideConfig{Kind: match.Human, DepthLimit: 1}, O: aiSide(eval.Material, 1)}
	c, err := match.NewController(cfg, bot.NewEngine(), match.WithMoveSource(source))
	require.NoError(t, err)

	_, err = c.Play(context.Background())
	assert.ErrorIs(t, err, errGone)
}

func TestControllerPublishFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).AnyTimes()

	cfg := match.Config{Board: threeByThree(), X: aiSide(eval.Material, 1), O: aiSide(eval.Material, 1)}
	c, err := match.NewController(cfg, bot.NewEngine(), match.WithPublisher(publisher))
	require.NoError(t, err)

	_, err = c.Step(context.Background())
	assert.NoError(t, err)
}

func TestControllerStopsOnCancelledContext(t *testing.T) {
	cfg := match.Config{Board: threeByThree(), X: aiSide(eval.Material, 1), O: aiSide(eval.Material, 1)}
	c, err := match.NewController(cfg, bot.NewEngine())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerReset(t *testing.T) {
	cfg := match.Config{Board: threeByThree(), X: aiSide(eval.LinePotential, 2), O: aiSide(eval.LinePotential, 2)}
	c, err := match.NewController(cfg, bot.NewEngine())
	require.NoError(t, err)

	first, err := c.Play(context.Background())
	require.NoError(t, err)
	require.True(t, first.Result.Over())

	c.Reset()
	snap := c.Snapshot()
	assert.Equal(t, game.InProgress, snap.Status)
	assert.Equal(t, game.PlayerX, snap.Next)
	assert.Zero(t, snap.MoveCount)
	assert.Equal(t, 0, c.Statistics().MoveCount)
	assert.Equal(t, game.InProgress, c.Result().Status)

	second, err := c.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Result, second.Result, "deterministic search must replay the same game")
	assert.Equal(t, first.MoveCount, second.MoveCount)
}

func TestControllerBoardWithoutEmptyCells(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	reporter.EXPECT().GameStarted(gomock.Any(), gomock.Any(), gomock.Any())
	reporter.EXPECT().GameConcluded(gomock.Any(), gomock.Any(), gomock.Any())

	cfg := match.Config{
		Board: game.Settings{Size: 1, WinLength: 1, BlockCount: 1, Blocks: []game.Coord{{Row: 0, Col: 0}}},
		X:     aiSide(eval.Material, 1),
		O:     aiSide(eval.Material, 1),
	}
	c, err := match.NewController(cfg, bot.NewEngine(), match.WithReporter(reporter))
	require.NoError(t, err)

	stats, err := c.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.Tie, stats.Result.Status)
	assert.Zero(t, stats.MoveCount)
}

func TestNewControllerErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  match.Config
		want error
	}{
		{
			name: "Human without move source",
			cfg:  match.Config{Board: threeByThree(), X: match.SideConfig{Kind: match.Human, DepthLimit: 1}, O: aiSide(eval.Material, 1)},
			want: match.ErrNoMoveSource,
		},
		{
			name: "Zero depth limit",
			cfg:  match.Config{Board: threeByThree(), X: aiSide(eval.Material, 0), O: aiSide(eval.Material, 1)},
			want: match.ErrInvalidConfig,
		},
		{
			name: "Unknown player kind",
			cfg:  match.Config{Board: threeByThree(), X: aiSide(eval.Material, 1), O: match.SideConfig{Kind: "robot", DepthLimit: 1}},
			want: match.ErrInvalidConfig,
		},
		{
			name: "Negative move time",
			cfg:  match.Config{Board: threeByThree(), X: match.SideConfig{Kind: match.AI, DepthLimit: 1, MoveTime: -time.Second}, O: aiSide(eval.Material, 1)},
			want: match.ErrInvalidConfig,
		},
		{
			name: "Inconsistent blocks",
			cfg:  match.Config{Board: game.Settings{Size: 3, WinLength: 3, BlockCount: 2}, X: aiSide(eval.Material, 1), O: aiSide(eval.Material, 1)},
			want: game.ErrBlockCountMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := match.NewController(tt.cfg, bot.NewEngine())
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockReporter(ctrl)
	second := mocks.NewMockReporter(ctrl)
	for _, r := range []*mocks.MockReporter{first, second} {
		r.EXPECT().GameStarted(gomock.Any(), gomock.Any(), gomock.Any())
		r.EXPECT().MovePlayed(gomock.Any(), gomock.Any(), gomock.Any()).Times(3)
		r.EXPECT().GameConcluded(gomock.Any(), gomock.Any(), gomock.Any())
	}

	cfg := match.Config{Board: game.Settings{Size: 3, WinLength: 2}, X: aiSide(eval.LinePotential, 4), O: aiSide(eval.LinePotential, 4)}
	c, err := match.NewController(cfg, bot.NewEngine(), match.WithReporter(match.MultiReporter{first, second}))
	require.NoError(t, err)

	// With two in a row to win, X completes a line on its second move.
	stats, err := c.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.MoveCount)
	assert.Equal(t, game.Result{Status: game.Win, Winner: game.PlayerX}, stats.Result)
}
