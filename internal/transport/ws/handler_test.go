package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dicematch/server/internal/dependencies/mocks"
	"github.com/dicematch/server/internal/engine"
	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage/memory"
	"github.com/dicematch/server/internal/testutil"
)

// fakeSender records messages per connection instead of writing sockets.
type fakeSender struct {
	messages map[engine.ConnectionID][]Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{messages: make(map[engine.ConnectionID][]Message)}
}

func (f *fakeSender) Send(conn engine.ConnectionID, msg Message) {
	f.messages[conn] = append(f.messages[conn], msg)
}

func (f *fakeSender) SendAll(conns []engine.ConnectionID, msg Message) {
	for _, conn := range conns {
		f.Send(conn, msg)
	}
}

func (f *fakeSender) last(conn engine.ConnectionID) (Message, bool) {
	msgs := f.messages[conn]
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeSender) reset() {
	f.messages = make(map[engine.ConnectionID][]Message)
}

type GameHandlerSuite struct {
	suite.Suite
	store   *memory.Storage
	random  *mocks.MockRandom
	engine  *engine.Engine
	sender  *fakeSender
	handler *GameHandler

	alice model.PlayerID
	bob   model.PlayerID

	aliceClient *Client
	bobClient   *Client
}

func TestGameHandlerSuite(t *testing.T) {
	suite.Run(t, new(GameHandlerSuite))
}

func (s *GameHandlerSuite) SetupTest() {
	s.store = memory.New()
	s.random = mocks.NewMockRandom()
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.engine = engine.New(s.store, clk, s.random, testutil.NopLogger())
	s.sender = newFakeSender()
	s.handler = NewGameHandler(s.engine, s.sender, testutil.NopLogger())

	ctx := context.Background()
	alice := &model.Profile{Email: "alice@example.com", Username: "alice"}
	s.Require().NoError(s.store.CreateProfile(ctx, alice))
	s.alice = alice.ID

	bob := &model.Profile{Email: "bob@example.com", Username: "bob"}
	s.Require().NoError(s.store.CreateProfile(ctx, bob))
	s.bob = bob.ID

	s.aliceClient = &Client{ID: "conn-alice"}
	s.bobClient = &Client{ID: "conn-bob"}
}

func (s *GameHandlerSuite) message(t EventType, payload any) Message {
	msg, err := NewMessage(t, payload)
	s.Require().NoError(err)
	return msg
}

func (s *GameHandlerSuite) decode(msg Message, v any) {
	s.Require().NoError(json.Unmarshal(msg.Payload, v))
}

// pair drives both clients through the join flow and returns the
// session id from the matched notification.
func (s *GameHandlerSuite) pair() model.SessionID {
	s.random.QueueString("abc1234")

	s.handler.HandleMessage(s.aliceClient, s.message(EventJoin, JoinPayload{UserID: s.alice}))
	s.Empty(s.sender.messages, "first join waits silently")

	s.handler.HandleMessage(s.bobClient, s.message(EventJoin, JoinPayload{UserID: s.bob}))

	msg, ok := s.sender.last("conn-alice")
	s.Require().True(ok)
	s.Require().Equal(EventMatched, msg.Type)
	var matched MatchedPayload
	s.decode(msg, &matched)

	msg, ok = s.sender.last("conn-bob")
	s.Require().True(ok)
	s.Require().Equal(EventMatched, msg.Type)

	s.sender.reset()
	return matched.GameID
}

func (s *GameHandlerSuite) TestJoinNotifiesBothOnMatch() {
	id := s.pair()
	s.NotEmpty(id)
}

func (s *GameHandlerSuite) TestJoinUnknownProfileSendsError() {
	s.handler.HandleMessage(s.aliceClient, s.message(EventJoin, JoinPayload{UserID: s.alice}))
	s.handler.HandleMessage(s.bobClient, s.message(EventJoin, JoinPayload{UserID: 999}))

	msg, ok := s.sender.last("conn-bob")
	s.Require().True(ok)
	s.Equal(EventError, msg.Type)
}

func (s *GameHandlerSuite) TestMalformedPayloadSendsError() {
	s.handler.HandleMessage(s.aliceClient, Message{Type: EventJoin, Payload: json.RawMessage(`"nope"`)})

	msg, ok := s.sender.last("conn-alice")
	s.Require().True(ok)
	s.Equal(EventError, msg.Type)
}

func (s *GameHandlerSuite) TestPingPong() {
	s.handler.HandleMessage(s.aliceClient, Message{Type: EventPing})

	msg, ok := s.sender.last("conn-alice")
	s.Require().True(ok)
	s.Equal(EventPong, msg.Type)
}

func (s *GameHandlerSuite) TestUnknownEventIsIgnored() {
	s.handler.HandleMessage(s.aliceClient, Message{Type: "teleport"})
	s.Empty(s.sender.messages)
}

func (s *GameHandlerSuite) TestStartGameReturnsStateToRequester() {
	id := s.pair()

	s.handler.HandleMessage(s.bobClient, s.message(EventStartGame, StartGamePayload{GameID: id}))

	msg, ok := s.sender.last("conn-bob")
	s.Require().True(ok)
	s.Require().Equal(EventGameState, msg.Type)

	var state GameStatePayload
	s.decode(msg, &state)
	s.Equal(id, state.GameID)
	s.Equal(s.alice, state.CurrentTurn)
	s.Require().Contains(state.PlayersState, s.alice)
	s.Equal("alice", state.PlayersState[s.alice].Name)
	s.Empty(s.sender.messages["conn-alice"], "state goes only to the requester")
}

func (s *GameHandlerSuite) TestStartGameUnknownSession() {
	s.handler.HandleMessage(s.aliceClient, s.message(EventStartGame, StartGamePayload{GameID: "game_0_missing"}))

	msg, ok := s.sender.last("conn-alice")
	s.Require().True(ok)
	s.Equal(EventError, msg.Type)
}

func (s *GameHandlerSuite) TestBuildDiceResolvesAndResets() {
	id := s.pair()

	s.handler.HandleMessage(s.aliceClient, s.message(EventBuildDice, BuildDicePayload{
		GameID: id, UserID: s.alice, DiceValues: []int{3, 3, 3, 3, 3, 3},
	}))
	s.Empty(s.sender.messages, "first submission pends")

	s.random.QueueIntn(0, 0)
	s.handler.HandleMessage(s.bobClient, s.message(EventBuildDice, BuildDicePayload{
		GameID: id, UserID: s.bob, DiceValues: []int{5, 5, 5, 5, 5, 5},
	}))

	for _, conn := range []engine.ConnectionID{"conn-alice", "conn-bob"} {
		msg, ok := s.sender.last(conn)
		s.Require().True(ok)
		s.Require().Equal(EventDiceRolled, msg.Type)

		var rolled DiceRolledPayload
		s.decode(msg, &rolled)
		s.Equal(3, rolled.DiceResults[s.alice])
		s.Equal(5, rolled.DiceResults[s.bob])
		s.Equal(s.bob, rolled.Turn)
	}

	// Dice are re-armed before the notification goes out.
	session, err := s.engine.GetSession(id)
	s.Require().NoError(err)
	s.False(session.State(s.alice).DiceSubmitted())
	s.False(session.State(s.bob).DiceSubmitted())
}

func (s *GameHandlerSuite) TestMovePawnsEchoesBatchToBoth() {
	id := s.pair()

	batch := model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{1}, From: model.ReadyPosition(), To: model.TrackPosition(4)},
	}
	s.handler.HandleMessage(s.aliceClient, s.message(EventMovePawns, MovePawnsPayload{GameID: id, Animation: batch}))

	for _, conn := range []engine.ConnectionID{"conn-alice", "conn-bob"} {
		msg, ok := s.sender.last(conn)
		s.Require().True(ok)
		s.Require().Equal(EventPawnsMoved, msg.Type)

		var moved PawnsMovedPayload
		s.decode(msg, &moved)
		s.Require().Len(moved.Animation, 1)
		s.Equal([]int{1}, moved.Animation[0].PawnSlots)
	}
}

func (s *GameHandlerSuite) TestMovePawnsInvalidSlotSendsError() {
	id := s.pair()

	batch := model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{8}, To: model.TrackPosition(4)},
	}
	s.handler.HandleMessage(s.aliceClient, s.message(EventMovePawns, MovePawnsPayload{GameID: id, Animation: batch}))

	msg, ok := s.sender.last("conn-alice")
	s.Require().True(ok)
	s.Equal(EventError, msg.Type)
	s.Empty(s.sender.messages["conn-bob"])
}

func (s *GameHandlerSuite) TestAnimationEndStartsNextTurn() {
	id := s.pair()

	s.handler.HandleMessage(s.aliceClient, s.message(EventAnimationEnd, AnimationEndPayload{GameID: id, UserID: s.alice}))

	for _, conn := range []engine.ConnectionID{"conn-alice", "conn-bob"} {
		msg, ok := s.sender.last(conn)
		s.Require().True(ok)
		s.Equal(EventNewTurnStart, msg.Type)
	}
}

func (s *GameHandlerSuite) TestAnimationEndAnnouncesWinnerAndEndsSession() {
	id := s.pair()

	err := s.engine.ApplyMovement(id, model.MovementBatch{
		{PlayerID: s.alice, PawnSlots: []int{0, 1, 2, 3}, To: model.FinishedPosition()},
	})
	s.Require().NoError(err)

	s.handler.HandleMessage(s.aliceClient, s.message(EventAnimationEnd, AnimationEndPayload{GameID: id, UserID: s.alice}))

	for _, conn := range []engine.ConnectionID{"conn-alice", "conn-bob"} {
		msg, ok := s.sender.last(conn)
		s.Require().True(ok)
		s.Require().Equal(EventGameEnded, msg.Type)

		var ended GameEndedPayload
		s.decode(msg, &ended)
		s.Equal(s.alice, ended.Winner)
	}

	_, err = s.engine.GetSession(id)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *GameHandlerSuite) TestDisconnectNotifiesOpponentAndTearsDown() {
	id := s.pair()

	s.handler.HandleDisconnect(s.aliceClient)

	msg, ok := s.sender.last("conn-bob")
	s.Require().True(ok)
	s.Equal(EventPlayerLeft, msg.Type)
	s.Empty(s.sender.messages["conn-alice"], "the departed connection gets nothing")

	_, err := s.engine.GetSession(id)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *GameHandlerSuite) TestDisconnectWithoutSessionIsQuiet() {
	s.handler.HandleDisconnect(s.aliceClient)
	s.Empty(s.sender.messages)
}
