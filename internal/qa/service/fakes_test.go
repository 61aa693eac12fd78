package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-qa-bot/internal/library/webapi"
	"github.com/Laisky/laisky-qa-bot/internal/qa/dao"
	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

const testExpertChatID int64 = -1001

type askFunc func(ctx context.Context, q *model.Question) (*model.Answer, error)

type ratingCall struct {
	AnswerID int64
	Rating   int
	MsgID    int
}

type fakeAPI struct {
	mu sync.Mutex

	predictors []string
	asks       map[string]askFunc

	users     []model.User
	userErr   error
	ratings   []ratingCall
	ratingErr error
	created   []*model.ExpertTicket
	createErr error
	updates   []*model.ExpertTicket
	tickets   map[int]*model.ExpertTicket // keyed by forwarded message id
	updateErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		asks:    map[string]askFunc{},
		tickets: map[int]*model.ExpertTicket{},
	}
}

func (f *fakeAPI) ListPredictors(context.Context) ([]string, error) {
	return f.predictors, nil
}

func (f *fakeAPI) Ask(ctx context.Context, predictor string, q *model.Question) (*model.Answer, error) {
	f.mu.Lock()
	ask, ok := f.asks[predictor]
	f.mu.Unlock()
	if !ok {
		return nil, errors.Wrap(webapi.ErrNotFound, predictor)
	}
	return ask(ctx, q)
}

func (f *fakeAPI) UpsertUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, *user)
	return f.userErr
}

func (f *fakeAPI) UpdateAnswerRating(_ context.Context, answerID int64, rating int, msgID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings = append(f.ratings, ratingCall{answerID, rating, msgID})
	return f.ratingErr
}

func (f *fakeAPI) CreateExpertTicket(_ context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *ticket
	f.created = append(f.created, &stored)
	f.tickets[stored.ExpertQuestionMsgID] = &stored
	out := stored
	return &out, nil
}

// UpdateExpertTicket merges answer fields into the ticket matched by the forwarded message
func (f *fakeAPI) UpdateExpertTicket(_ context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *ticket
	f.updates = append(f.updates, &copied)
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	stored, ok := f.tickets[ticket.ExpertQuestionMsgID]
	if !ok || stored.ExpertQuestionChatID != ticket.ExpertQuestionChatID {
		return nil, errors.Wrap(webapi.ErrNotFound, "expert question")
	}
	if stored.Status == model.TicketRelayed {
		out := *stored
		return &out, nil
	}

	stored.ExpertAnswerText = ticket.ExpertAnswerText
	stored.ExpertAnswerMsgID = ticket.ExpertAnswerMsgID
	stored.ExpertUserID = ticket.ExpertUserID
	stored.Status = ticket.Status
	out := *stored
	return &out, nil
}

func (f *fakeAPI) ticket(expertMsgID int) *model.ExpertTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[expertMsgID]
	if !ok {
		return nil
	}
	out := *t
	return &out
}

type editCall struct {
	ChatID int64
	MsgID  int
	Text   string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []*OutMessage
	edits   []editCall
	typing  int
	nextID  int
	sendErr func(msg *OutMessage) error
	editErr error
}

func (f *fakeMessenger) Send(_ context.Context, msg *OutMessage) (*SentMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		if err := f.sendErr(msg); err != nil {
			return nil, err
		}
	}
	f.nextID++
	f.sent = append(f.sent, msg)
	return &SentMessage{ChatID: msg.ChatID, MessageID: 1000 + f.nextID}, nil
}

func (f *fakeMessenger) Edit(_ context.Context, chatID int64, msgID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editCall{chatID, msgID, text})
	return nil
}

func (f *fakeMessenger) Typing(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return nil
}

func (f *fakeMessenger) sentTo(chatID int64) []*OutMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*OutMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

type fakeBacklog struct {
	mu      sync.Mutex
	tickets []*model.ExpertTicket
}

func (f *fakeBacklog) AddFailedRelay(_ context.Context, ticket *model.ExpertTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *ticket
	f.tickets = append(f.tickets, &copied)
	return nil
}

type fixture struct {
	qa      *QA
	api     *fakeAPI
	msg     *fakeMessenger
	pending *dao.Memory
	backlog *fakeBacklog
}

func newFixture(t *testing.T, predictors ...string) *fixture {
	t.Helper()
	api := newFakeAPI()
	api.predictors = predictors
	msg := &fakeMessenger{}
	backlog := &fakeBacklog{}

	pending, err := dao.NewMemory(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pending.Close() })

	qa, err := New(api, msg, pending, backlog, NewPredictorRegistry(predictors...), Options{
		ExpertChatID: testExpertChatID,
		BotUsername:  "FIChatbot",
		Pause:        func(context.Context) {},
	})
	require.NoError(t, err)

	return &fixture{qa: qa, api: api, msg: msg, pending: pending, backlog: backlog}
}

func answerWith(id int64, text string) askFunc {
	return func(context.Context, *model.Question) (*model.Answer, error) {
		return &model.Answer{ID: &id, Text: text}, nil
	}
}

func answerNothing() askFunc {
	return func(context.Context, *model.Question) (*model.Answer, error) {
		return nil, nil
	}
}

func answerError() askFunc {
	return func(context.Context, *model.Question) (*model.Answer, error) {
		return nil, errors.Wrap(webapi.ErrConnection, "predictor down")
	}
}
