package service

import (
	"context"
	"testing"
	"time"

	"quizzy-quest/internal/adapter"
	"quizzy-quest/internal/cache"
	"quizzy-quest/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisQuizCache(t *testing.T, ttl time.Duration) (*QuizCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQuizCache(adapter.NewRedisCacheAdapter(client), ttl), mr
}

func TestQuizCache_EncodeDecode(t *testing.T) {
	quiz := &domain.Quiz{ID: 3, OwnerID: 1, Name: "Mixed", CreatedAt: fixedNow, UpdatedAt: fixedNow}

	tests := []struct {
		name  string
		qtype domain.QuizType
		items []domain.Question
	}{
		{"multiple choice", domain.TypeMultipleChoice, mcItems(2)},
		{"identification", domain.TypeIdentification, identificationItems(3)},
		{"true or false", domain.TypeTrueOrFalse, []domain.Question{
			domain.TrueOrFalse{QuestionCommon: domain.QuestionCommon{ID: 4, Text: "Cats are mammals."}, Answer: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := *quiz
			ids := make([]int64, len(tt.items))
			for i := range ids {
				ids[i] = int64(i + 10)
				tt.items[i] = tt.items[i].WithID(ids[i])
			}
			q.SetQuestions(tt.qtype, ids)
			in := &domain.QuizWithQuestions{Quiz: &q, Questions: tt.items}

			raw, err := encodeQuiz(in)
			require.NoError(t, err)
			out, err := decodeQuiz(raw)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}

	_, err := decodeQuiz(`{"quiz":{"Type":"Identification","Questions":[{"Type":"Identification","ID":1}]}}`)
	assert.Error(t, err, "reference count must match the stored questions")
}

func TestQuizCache_NilIsSafe(t *testing.T) {
	var c *QuizCache
	assert.Nil(t, NewQuizCache(nil, time.Minute))

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
	c.Set(context.Background(), &domain.QuizWithQuestions{Quiz: &domain.Quiz{ID: 1}})
	c.Evict(context.Background(), 1)
}

func TestQuizService_ReadThroughCache(t *testing.T) {
	qc, mr := newMiniredisQuizCache(t, 5*time.Minute)
	f := newQuizFixture(t, qc)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(3)))
	key := cache.QuizDetailKey(id)

	first, err := f.svc.GetQuiz(ctx, id)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))

	// A change behind the service's back is not visible until eviction.
	f.db.mu.Lock()
	stored := f.db.state.quizzes[id]
	stored.Name = "Changed directly"
	f.db.state.quizzes[id] = stored
	f.db.mu.Unlock()

	cached, err := f.svc.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	edit, err := f.svc.GetQuizForEdit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Changed directly", edit.Quiz.Name)

	draft := draftOf(domain.TypeIdentification, identificationItems(1))
	draft.Meta.Name = "Updated title"
	require.NoError(t, f.svc.UpdateQuiz(ctx, id, f.owner.ID, draft, nil))
	assert.False(t, mr.Exists(key))

	fresh, err := f.svc.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", fresh.Quiz.Name)
	assert.Equal(t, domain.TypeIdentification, fresh.Quiz.Type)

	require.NoError(t, f.svc.DeleteQuiz(ctx, id, f.owner.ID))
	assert.False(t, mr.Exists(key))
	_, err = f.svc.GetQuiz(ctx, id)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestQuizService_CacheFailuresFallThrough(t *testing.T) {
	qc, mr := newMiniredisQuizCache(t, time.Minute)
	f := newQuizFixture(t, qc)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	require.NoError(t, mr.Set(cache.QuizDetailKey(id), "not json"))
	got, err := f.svc.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.Quiz.ID)

	mr.Close()
	got, err = f.svc.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.Quiz.ID)
	assert.NoError(t, f.svc.DeleteQuiz(ctx, id, f.owner.ID))
}
