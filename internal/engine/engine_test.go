package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dicematch/server/internal/dependencies/mocks"
	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage/memory"
	"github.com/dicematch/server/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	store  *memory.Storage
	clock  *mocks.MockClock
	random *mocks.MockRandom
	engine *Engine
	ctx    context.Context

	alice model.PlayerID
	bob   model.PlayerID
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.engine = New(s.store, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	alice := &model.Profile{Email: "alice@example.com", Username: "alice"}
	s.Require().NoError(s.store.CreateProfile(s.ctx, alice))
	s.alice = alice.ID

	bob := &model.Profile{Email: "bob@example.com", Username: "bob", AvatarRef: "/uploads/bob.png"}
	s.Require().NoError(s.store.CreateProfile(s.ctx, bob))
	s.bob = bob.ID
}

// pair joins alice then bob and returns the created session id.
func (s *EngineSuite) pair() model.SessionID {
	s.random.QueueString("abc1234")

	id, err := s.engine.Join(s.ctx, "conn-alice", s.alice)
	s.Require().NoError(err)
	s.Require().Empty(id)

	id, err = s.engine.Join(s.ctx, "conn-bob", s.bob)
	s.Require().NoError(err)
	s.Require().NotEmpty(id)
	return id
}

// Matchmaking

func (s *EngineSuite) TestJoinFirstPlayerWaits() {
	id, err := s.engine.Join(s.ctx, "conn-alice", s.alice)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *EngineSuite) TestJoinPairsTwoOldestConnections() {
	id := s.pair()
	s.Equal(model.SessionID("game_1748779200000_abc1234"), id)

	session, err := s.engine.GetSession(id)
	s.Require().NoError(err)
	s.Equal([2]model.PlayerID{s.alice, s.bob}, session.Players)
	s.Equal(s.alice, session.CurrentTurn)

	aliceState := session.State(s.alice)
	s.Require().NotNil(aliceState)
	s.Equal("alice", aliceState.Name)
	s.Equal(model.ColorBlue, aliceState.Color)
	s.Len(aliceState.Pawns, model.PawnsPerPlayer)
	for _, p := range aliceState.Pawns {
		s.True(p.Position.IsReady())
	}

	bobState := session.State(s.bob)
	s.Require().NotNil(bobState)
	s.Equal("bob", bobState.Name)
	s.Equal("/uploads/bob.png", bobState.AvatarRef)
	s.Equal(model.ColorRed, bobState.Color)
}

func (s *EngineSuite) TestJoinSameConnectionTwice() {
	_, err := s.engine.Join(s.ctx, "conn-alice", s.alice)
	s.Require().NoError(err)

	_, err = s.engine.Join(s.ctx, "conn-alice", s.alice)
	s.ErrorIs(err, model.ErrAlreadyQueued)
}

func (s *EngineSuite) TestJoinMissingProfileAbortsPairing() {
	_, err := s.engine.Join(s.ctx, "conn-alice", s.alice)
	s.Require().NoError(err)

	_, err = s.engine.Join(s.ctx, "conn-ghost", 999)
	s.ErrorIs(err, model.ErrProfileNotFound)

	// Neither connection ends up bound to a session.
	s.Nil(s.engine.GetSessionByConnection("conn-alice"))
	s.Nil(s.engine.GetSessionByConnection("conn-ghost"))
}

func (s *EngineSuite) TestGetSessionByConnection() {
	id := s.pair()

	session := s.engine.GetSessionByConnection("conn-bob")
	s.Require().NotNil(session)
	s.Equal(id, session.ID)

	s.Nil(s.engine.GetSessionByConnection("conn-stranger"))
}

func (s *EngineSuite) TestResolveConnectionsForSession() {
	id := s.pair()

	conns, err := s.engine.ResolveConnectionsForSession(id)
	s.Require().NoError(err)
	s.Equal([]ConnectionID{"conn-alice", "conn-bob"}, conns)
}

// Dice rounds

func (s *EngineSuite) TestSubmitDiceFirstSubmissionPends() {
	id := s.pair()

	result, err := s.engine.SubmitDice(id, s.alice, []int{3, 3, 3, 3, 3, 3})
	s.Require().NoError(err)
	s.Nil(result)
}

func (s *EngineSuite) TestSubmitDiceResolvesRound() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, s.alice, []int{3, 3, 3, 3, 3, 3})
	s.Require().NoError(err)

	s.random.QueueIntn(0, 0)
	result, err := s.engine.SubmitDice(id, s.bob, []int{5, 5, 5, 5, 5, 5})
	s.Require().NoError(err)
	s.Require().NotNil(result)

	s.Equal(3, result.Rolls[s.alice])
	s.Equal(5, result.Rolls[s.bob])
	s.Equal(s.bob, result.NextTurn)
	s.Equal([]int{3, 3, 3, 3, 3, 3}, result.Faces[s.alice])
	s.Equal([]int{5, 5, 5, 5, 5, 5}, result.Faces[s.bob])

	session, err := s.engine.GetSession(id)
	s.Require().NoError(err)
	s.Equal(s.bob, session.CurrentTurn)
	s.Equal(3, session.State(s.alice).LastRoll)
	s.Equal(5, session.State(s.bob).LastRoll)
}

func (s *EngineSuite) TestSubmitDiceTieAlternatesTurn() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, s.alice, []int{4, 4, 4, 4, 4, 4})
	s.Require().NoError(err)
	s.random.QueueIntn(0, 0)
	result, err := s.engine.SubmitDice(id, s.bob, []int{4, 4, 4, 4, 4, 4})
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.Equal(s.bob, result.NextTurn, "tie hands the turn to the non-holder")

	s.Require().NoError(s.engine.ResetDice(id))

	_, err = s.engine.SubmitDice(id, s.alice, []int{4, 4, 4, 4, 4, 4})
	s.Require().NoError(err)
	s.random.QueueIntn(0, 0)
	result, err = s.engine.SubmitDice(id, s.bob, []int{4, 4, 4, 4, 4, 4})
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.Equal(s.alice, result.NextTurn, "second tie hands it back")
}

func (s *EngineSuite) TestSubmitDiceOverwritesPriorSubmission() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, s.alice, []int{1, 1, 1, 1, 1, 1})
	s.Require().NoError(err)
	result, err := s.engine.SubmitDice(id, s.alice, []int{6, 6, 6, 6, 6, 6})
	s.Require().NoError(err)
	s.Nil(result, "resubmission alone must not resolve")

	s.random.QueueIntn(0, 0)
	result, err = s.engine.SubmitDice(id, s.bob, []int{2, 2, 2, 2, 2, 2})
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.Equal(6, result.Rolls[s.alice], "latest faces win")
}

func (s *EngineSuite) TestSubmitDiceAllZerosStaysPending() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, s.alice, []int{0, 0, 0, 0, 0, 0})
	s.Require().NoError(err)
	result, err := s.engine.SubmitDice(id, s.bob, []int{5, 5, 5, 5, 5, 5})
	s.Require().NoError(err)
	s.Nil(result, "all-zero faces count as not rolled")
}

func (s *EngineSuite) TestSubmitDiceRejectsWrongLength() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, s.alice, []int{1, 2, 3})
	s.ErrorIs(err, model.ErrInvalidDiceFaces)
}

func (s *EngineSuite) TestSubmitDiceUnknownPlayer() {
	id := s.pair()

	_, err := s.engine.SubmitDice(id, 999, []int{1, 1, 1, 1, 1, 1})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *EngineSuite) TestSubmitDiceUnknownSession() {
	_, err := s.engine.SubmitDice("game_0_missing", s.alice, []int{1, 1, 1, 1, 1, 1})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Movement and win detection

func (s *EngineSuite) TestApplyMovementRelocatesPawns() {
	id := s.pair()

	err := s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{0, 2}, From: model.ReadyPosition(), To: model.TrackPosition(7)},
	})
	s.Require().NoError(err)

	session, err := s.engine.GetSession(id)
	s.Require().NoError(err)
	pawns := session.State(s.alice).Pawns
	idx, ok := pawns[0].Position.TrackIndex()
	s.Require().True(ok)
	s.Equal(7, idx)
	idx, ok = pawns[2].Position.TrackIndex()
	s.Require().True(ok)
	s.Equal(7, idx)
	s.True(pawns[1].Position.IsReady())
	s.True(pawns[3].Position.IsReady())
}

func (s *EngineSuite) TestApplyMovementBadSlotLeavesSessionUntouched() {
	id := s.pair()

	err := s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{0}, To: model.TrackPosition(3)},
		{PlayerID: s.alice, PawnSlots: []int{9}, To: model.TrackPosition(3)},
	})
	s.ErrorIs(err, model.ErrInvalidPawnIndex)

	session, err := s.engine.GetSession(id)
	s.Require().NoError(err)
	s.True(session.State(s.alice).Pawns[0].Position.IsReady(), "valid entry must not apply either")
}

func (s *EngineSuite) TestApplyMovementUnknownPlayer() {
	id := s.pair()

	err := s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: 999, PawnSlots: []int{0}, To: model.TrackPosition(1)},
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *EngineSuite) TestCompleteMovementContinuesWithoutWinner() {
	id := s.pair()

	winner, won, err := s.engine.CompleteMovement(id, s.alice)
	s.Require().NoError(err)
	s.False(won)
	s.Zero(winner)
}

func (s *EngineSuite) TestCompleteMovementSkipsWinCheckWhileDicePending() {
	id := s.pair()

	// Bob finishes every pawn but still holds live dice, so the
	// settlement checkpoint has not been reached.
	s.finishAllPawns(id, s.bob)
	_, err := s.engine.SubmitDice(id, s.bob, []int{2, 2, 2, 2, 2, 2})
	s.Require().NoError(err)

	winner, won, err := s.engine.CompleteMovement(id, s.alice)
	s.Require().NoError(err)
	s.False(won)
	s.Zero(winner)
}

func (s *EngineSuite) TestCompleteMovementDetectsWinner() {
	id := s.pair()

	s.finishAllPawns(id, s.bob)

	winner, won, err := s.engine.CompleteMovement(id, s.bob)
	s.Require().NoError(err)
	s.True(won)
	s.Equal(s.bob, winner)
}

func (s *EngineSuite) finishAllPawns(id model.SessionID, player model.PlayerID) {
	err := s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: player, PawnSlots: []int{0, 1, 2, 3}, To: model.FinishedPosition()},
	})
	s.Require().NoError(err)
}

// Teardown

func (s *EngineSuite) TestTeardownSession() {
	id := s.pair()

	s.True(s.engine.TeardownSession(id))
	s.False(s.engine.TeardownSession(id), "second teardown is a no-op")

	_, err := s.engine.GetSession(id)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Nil(s.engine.GetSessionByConnection("conn-alice"))

	_, err = s.engine.ResolveConnectionsForSession(id)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *EngineSuite) TestOperationsAfterTeardownFail() {
	id := s.pair()
	s.True(s.engine.TeardownSession(id))

	_, err := s.engine.SubmitDice(id, s.alice, []int{1, 1, 1, 1, 1, 1})
	s.ErrorIs(err, model.ErrSessionNotFound)

	err = s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{0}, To: model.TrackPosition(1)},
	})
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, _, err = s.engine.CompleteMovement(id, s.alice)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *EngineSuite) TestPlayersCanRequeueAfterTeardown() {
	id := s.pair()
	s.True(s.engine.TeardownSession(id))

	s.random.QueueString("def5678")
	waiting, err := s.engine.Join(s.ctx, "conn-alice-2", s.alice)
	s.Require().NoError(err)
	s.Empty(waiting)

	next, err := s.engine.Join(s.ctx, "conn-bob-2", s.bob)
	s.Require().NoError(err)
	s.NotEmpty(next)
	s.NotEqual(id, next)
}
