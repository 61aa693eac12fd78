package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

func collect(ch <-chan *model.Answer) []*model.Answer {
	var out []*model.Answer
	for ans := range ch {
		out = append(out, ans)
	}
	return out
}

func TestDispatchCompleteness(t *testing.T) {
	api := newFakeAPI()
	var resolved atomic.Int32
	counted := func(f askFunc) askFunc {
		return func(ctx context.Context, q *model.Question) (*model.Answer, error) {
			defer resolved.Add(1)
			return f(ctx, q)
		}
	}

	// 3 succeed, 2 fail, 2 find nothing
	api.asks["ok1"] = counted(answerWith(1, "one"))
	api.asks["ok2"] = counted(answerWith(2, "two"))
	api.asks["ok3"] = counted(answerWith(3, "three"))
	api.asks["fail1"] = counted(answerError())
	api.asks["fail2"] = counted(answerError())
	api.asks["null1"] = counted(answerNothing())
	api.asks["null2"] = counted(answerNothing())

	registry := NewPredictorRegistry("ok1", "fail1", "null1", "ok2", "fail2", "null2", "ok3")
	d := NewDispatcher(api, registry, time.Second)

	answers := collect(d.Dispatch(context.Background(), &model.Question{Text: "q"}))
	require.Len(t, answers, 3)
	require.EqualValues(t, 7, resolved.Load(), "done only after every predictor resolved")

	got := map[string]string{}
	for _, ans := range answers {
		got[ans.Predictor] = ans.Text
	}
	require.Equal(t, map[string]string{"ok1": "one", "ok2": "two", "ok3": "three"}, got)
}

func TestDispatchCompletionOrder(t *testing.T) {
	api := newFakeAPI()
	releaseA := make(chan struct{})
	releaseB := make(chan struct{})
	gated := func(release chan struct{}, id int64, text string) askFunc {
		return func(ctx context.Context, q *model.Question) (*model.Answer, error) {
			<-release
			return answerWith(id, text)(ctx, q)
		}
	}
	api.asks["A"] = gated(releaseA, 1, "from A")
	api.asks["B"] = gated(releaseB, 2, "from B")

	d := NewDispatcher(api, NewPredictorRegistry("A", "B"), time.Second)
	answers := d.Dispatch(context.Background(), &model.Question{Text: "q"})

	close(releaseB)
	first := <-answers
	require.Equal(t, "B", first.Predictor)

	close(releaseA)
	second := <-answers
	require.Equal(t, "A", second.Predictor)

	_, open := <-answers
	require.False(t, open)
}

func TestDispatchSlowPredictorDoesNotBlockOthers(t *testing.T) {
	api := newFakeAPI()
	api.asks["slow"] = func(ctx context.Context, q *model.Question) (*model.Answer, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	api.asks["fast"] = answerWith(9, "fast")

	d := NewDispatcher(api, NewPredictorRegistry("slow", "fast"), 200*time.Millisecond)
	answers := d.Dispatch(context.Background(), &model.Question{Text: "q"})

	select {
	case ans := <-answers:
		require.Equal(t, "fast", ans.Predictor)
	case <-time.After(150 * time.Millisecond):
		t.Fatal("fast predictor blocked by slow one")
	}

	// the slow predictor times out and the stream terminates
	require.Empty(t, collect(answers))
}

func TestDispatchNoPredictors(t *testing.T) {
	d := NewDispatcher(newFakeAPI(), NewPredictorRegistry(), time.Second)
	require.Empty(t, collect(d.Dispatch(context.Background(), &model.Question{Text: "q"})))
}

func TestLoadPredictorRegistry(t *testing.T) {
	api := newFakeAPI()
	api.predictors = []string{"A", "B"}

	registry, err := LoadPredictorRegistry(context.Background(), api)
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())

	names := registry.Names()
	names[0] = "mutated"
	require.Equal(t, []string{"A", "B"}, registry.Names())
}
