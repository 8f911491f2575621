package service

import (
	"context"
	"testing"

	"quizzy-quest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedAttempt(quizID int64) *domain.QuizAnswer {
	return &domain.QuizAnswer{
		QuizID:         quizID,
		Type:           domain.TypeMultipleChoice,
		Points:         []int{50},
		Answers:        []string{"a"},
		RemainingTimes: []int{7},
		Questions:      []string{"Question 01 xxxx"},
	}
}

func TestAccessService_AnswerAccessOrder(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	public := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))
	privateDraft := draftOf(domain.TypeMultipleChoice, mcItems(1))
	privateDraft.Meta.Public = false
	private := f.create(t, privateDraft)

	// An owner attempt on a private quiz: already answered is reported first.
	f.db.mu.Lock()
	f.db.state.answers = append(f.db.state.answers, domain.QuizAnswer{QuizID: private, UserID: f.owner.ID, Type: domain.TypeMultipleChoice})
	f.db.mu.Unlock()

	tests := []struct {
		name      string
		quizID    int64
		requester int64
		want      domain.AccessDecision
	}{
		{"missing quiz", 404, f.other.ID, domain.Deny(domain.ReasonQuizNotFound)},
		{"already answered before private and own", private, f.owner.ID, domain.Deny(domain.ReasonAlreadyAnswered)},
		{"private", private, f.other.ID, domain.Deny(domain.ReasonQuizPrivate)},
		{"own quiz", public, f.owner.ID, domain.Deny(domain.ReasonOwnQuiz)},
		{"allowed", public, f.other.ID, domain.Allow()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.access.AnswerAccess(ctx, tt.quizID, tt.requester)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessService_PrivateDeniesEveryone(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	draft := draftOf(domain.TypeMultipleChoice, mcItems(1))
	draft.Meta.Public = false
	id := f.create(t, draft)

	for _, requester := range []int64{f.owner.ID, f.other.ID, domain.AnonymousUserID, 12345} {
		got, err := f.access.AnswerAccess(ctx, id, requester)
		require.NoError(t, err)
		assert.False(t, got.Allowed, "requester %d", requester)
	}

	got, err := f.access.UnauthAnswerAccess(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Deny(domain.ReasonQuizPrivate), got)
}

func TestAccessService_UnauthAnswerAccess(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	got, err := f.access.UnauthAnswerAccess(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Allow(), got)

	got, err = f.access.UnauthAnswerAccess(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, domain.Deny(domain.ReasonQuizNotFound), got)
}

func TestAccessService_StoreFailure(t *testing.T) {
	f := newQuizFixture(t, nil)
	f.db.failOn("quiz.get", errStoreDown)

	_, err := f.access.AnswerAccess(context.Background(), 1, f.other.ID)
	assert.True(t, domain.HasCode(err, domain.CodeInternal))

	_, err = f.access.AboutOrEditAccess(context.Background(), 1, f.other.ID)
	assert.True(t, domain.HasCode(err, domain.CodeInternal))
}

// Owner X publishes, Y answers once, then only X may open the about page.
func TestAccessFlow_AnswerOnceThenAbout(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	x, y := f.owner, f.other
	id := f.create(t, draftOf(domain.TypeMultipleChoice, mcItems(1)))

	got, err := f.access.AnswerAccess(ctx, id, y.ID)
	require.NoError(t, err)
	assert.True(t, got.Allowed)

	_, err = f.answers.SubmitAuthenticated(ctx, y.ID, finishedAttempt(id))
	require.NoError(t, err)

	got, err = f.access.AnswerAccess(ctx, id, y.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Deny(domain.ReasonAlreadyAnswered), got)

	got, err = f.access.AboutOrEditAccess(ctx, id, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Allow(), got)

	got, err = f.access.AboutOrEditAccess(ctx, id, y.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Deny(domain.ReasonNotOwner), got)
}
