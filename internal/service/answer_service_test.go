package service

import (
	"context"
	"strings"
	"testing"

	"quizzy-quest/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerService_RejectsMismatchedLengths(t *testing.T) {
	f := newQuizFixture(t, nil)
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(5)))
	before := f.db.snapshot()

	attempt := &domain.QuizAnswer{
		QuizID:         id,
		Type:           domain.TypeMultipleChoice,
		Points:         []int{50, 50, 0, 0, 50},
		Answers:        []string{"a", "a", "b", "c"},
		RemainingTimes: []int{1, 2, 3, 4, 5},
		Questions:      []string{"q1", "q2", "q3", "q4", "q5"},
	}
	_, err := f.answers.SubmitAuthenticated(context.Background(), f.other.ID, attempt)

	v, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, domain.ValidationErrors{domain.MsgAttemptLengthMismatch}, v)
	assert.Equal(t, before, f.db.snapshot())
}

func TestAnswerService_RejectsEmptyAttempt(t *testing.T) {
	f := newQuizFixture(t, nil)
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	_, err := f.answers.SubmitAnonymous(context.Background(), &domain.QuizAnswer{QuizID: id, Type: domain.TypeMultipleChoice})

	v, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, domain.ValidationErrors{domain.MsgAttemptEmpty}, v)
}

func TestAnswerService_SubmitAuthenticated(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	attempt := finishedAttempt(id)
	attempt.UserID = 999 // overwritten with the requester
	answerID, err := f.answers.SubmitAuthenticated(ctx, f.other.ID, attempt)
	require.NoError(t, err)
	assert.NotZero(t, answerID)
	assert.Equal(t, f.other.ID, attempt.UserID)

	answered, err := f.answers.HasAnswered(ctx, id, f.other.ID)
	require.NoError(t, err)
	assert.True(t, answered)

	_, err = f.answers.SubmitAuthenticated(ctx, f.other.ID, finishedAttempt(id))
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))
	assert.EqualError(t, err, domain.ReasonAlreadyAnswered)

	_, err = f.answers.SubmitAuthenticated(ctx, f.owner.ID, finishedAttempt(id))
	assert.EqualError(t, err, domain.ReasonOwnQuiz)

	_, err = f.answers.SubmitAuthenticated(ctx, f.other.ID, finishedAttempt(404))
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestAnswerService_RecordAttemptDuplicate(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	first := finishedAttempt(id)
	first.UserID = f.other.ID
	_, err := f.answers.RecordAttempt(ctx, first)
	require.NoError(t, err)

	second := finishedAttempt(id)
	second.UserID = f.other.ID
	_, err = f.answers.RecordAttempt(ctx, second)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)
	assert.Len(t, f.db.snapshot().answers, 1)
}

func TestAnswerService_AnonymousRepeats(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	for i := 0; i < 3; i++ {
		_, err := f.answers.SubmitAnonymous(ctx, finishedAttempt(id))
		require.NoError(t, err)
	}

	attempts, err := f.answers.ListAttempts(ctx, id)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	for _, a := range attempts {
		assert.Equal(t, domain.AnonymousUserID, a.Answer.UserID)
		assert.Equal(t, domain.UnknownUser(), a.User)
	}

	answered, err := f.answers.HasAnswered(ctx, id, domain.AnonymousUserID)
	require.NoError(t, err)
	assert.False(t, answered)

	expected := `
# HELP quizzy_attempts_recorded_total Quiz attempts recorded by quiz type and whether the taker was anonymous.
# TYPE quizzy_attempts_recorded_total counter
quizzy_attempts_recorded_total{anonymous="true",type="Multiple Choice"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "quizzy_attempts_recorded_total"))
}

func TestAnswerService_AnonymousPrivateDenied(t *testing.T) {
	f := newQuizFixture(t, nil)
	draft := draftOf(domain.TypeMultipleChoice, mcItems(1))
	draft.Meta.Public = false
	id := f.create(t, draft)

	_, err := f.answers.SubmitAnonymous(context.Background(), finishedAttempt(id))

	assert.True(t, domain.HasCode(err, domain.CodeForbidden))
	assert.EqualError(t, err, domain.ReasonQuizPrivate)
	assert.Empty(t, f.db.snapshot().answers)
}

func TestAnswerService_ListAttemptsLookupFailure(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))
	_, err := f.answers.SubmitAuthenticated(ctx, f.other.ID, finishedAttempt(id))
	require.NoError(t, err)
	f.db.failOn("users.get", errStoreDown)

	_, err = f.answers.ListAttempts(ctx, id)
	assert.True(t, domain.HasCode(err, domain.CodeInternal))
}
