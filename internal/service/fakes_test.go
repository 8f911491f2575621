package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// memState is the full content of the in-memory store.
type memState struct {
	nextID    int64
	quizzes   map[int64]domain.Quiz
	questions map[domain.QuizType]map[int64]domain.Question
	answers   []domain.QuizAnswer
	users     map[int64]domain.User
}

func (s memState) clone() memState {
	c := memState{
		nextID:    s.nextID,
		quizzes:   make(map[int64]domain.Quiz, len(s.quizzes)),
		questions: make(map[domain.QuizType]map[int64]domain.Question, len(s.questions)),
		answers:   append([]domain.QuizAnswer(nil), s.answers...),
		users:     make(map[int64]domain.User, len(s.users)),
	}
	for id, q := range s.quizzes {
		q.Questions = append([]domain.QuestionRef(nil), q.Questions...)
		c.quizzes[id] = q
	}
	for t, rows := range s.questions {
		c.questions[t] = make(map[int64]domain.Question, len(rows))
		for id, q := range rows {
			c.questions[t][id] = q
		}
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	return c
}

// memDB backs every fake repository. failures maps an operation name such as
// "quiz.create" to the error that operation returns.
type memDB struct {
	mu       sync.Mutex
	state    memState
	failures map[string]error
}

func newMemDB() *memDB {
	db := &memDB{
		state: memState{
			quizzes:   map[int64]domain.Quiz{},
			questions: map[domain.QuizType]map[int64]domain.Question{},
			users:     map[int64]domain.User{},
		},
		failures: map[string]error{},
	}
	for _, t := range domain.QuizTypes {
		db.state.questions[t] = map[int64]domain.Question{}
	}
	return db
}

func (db *memDB) snapshot() memState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.clone()
}

func (db *memDB) failOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

// fail must be called with mu held.
func (db *memDB) fail(op string) error {
	return db.failures[op]
}

func (db *memDB) id() int64 {
	db.state.nextID++
	return db.state.nextID
}

func (db *memDB) addUser(name string) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := domain.User{
		ID:        db.id(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      domain.DefaultRole,
		ImagePath: domain.UserImagePrefix + name + ".png",
	}
	db.state.users[u.ID] = u
	return &u
}

// memTx restores the snapshot taken at the start when fn fails.
type memTx struct {
	db *memDB
}

func (tx memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := tx.db.snapshot()
	if err := fn(ctx); err != nil {
		tx.db.mu.Lock()
		tx.db.state = snap
		tx.db.mu.Unlock()
		return err
	}
	return nil
}

type memQuizRepo struct {
	db *memDB
}

func (r memQuizRepo) Create(_ context.Context, quiz *domain.Quiz) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("quiz.create"); err != nil {
		return 0, err
	}
	quiz.ID = r.db.id()
	stored := *quiz
	stored.Questions = append([]domain.QuestionRef(nil), quiz.Questions...)
	r.db.state.quizzes[quiz.ID] = stored
	return quiz.ID, nil
}

func (r memQuizRepo) GetByID(_ context.Context, id int64) (*domain.Quiz, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("quiz.get"); err != nil {
		return nil, err
	}
	q, ok := r.db.state.quizzes[id]
	if !ok {
		return nil, nil
	}
	q.Questions = append([]domain.QuestionRef(nil), q.Questions...)
	return &q, nil
}

// GetByIDForUpdate has no lock to take; memTx runs transactions one at a time
// from the caller's point of view.
func (r memQuizRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Quiz, error) {
	return r.GetByID(ctx, id)
}

func (r memQuizRepo) Update(_ context.Context, quiz *domain.Quiz) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("quiz.update"); err != nil {
		return err
	}
	if _, ok := r.db.state.quizzes[quiz.ID]; !ok {
		return domain.NewQuizNotFoundError(quiz.ID)
	}
	stored := *quiz
	stored.Questions = append([]domain.QuestionRef(nil), quiz.Questions...)
	r.db.state.quizzes[quiz.ID] = stored
	return nil
}

func (r memQuizRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("quiz.delete"); err != nil {
		return err
	}
	if _, ok := r.db.state.quizzes[id]; !ok {
		return domain.NewQuizNotFoundError(id)
	}
	delete(r.db.state.quizzes, id)
	return nil
}

func (r memQuizRepo) list(match func(domain.Quiz) bool) []*domain.Quiz {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Quiz
	for _, q := range r.db.state.quizzes {
		if match(q) {
			q := q
			out = append(out, &q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memQuizRepo) ListPublicByType(_ context.Context, t domain.QuizType, excludeOwnerID int64) ([]*domain.Quiz, error) {
	return r.list(func(q domain.Quiz) bool {
		return q.Type == t && q.Public && q.OwnerID != excludeOwnerID
	}), nil
}

func (r memQuizRepo) ListByOwnerAndType(_ context.Context, ownerID int64, t domain.QuizType) ([]*domain.Quiz, error) {
	return r.list(func(q domain.Quiz) bool {
		return q.Type == t && q.OwnerID == ownerID
	}), nil
}

type memQuestionStore struct {
	db *memDB
	t  domain.QuizType
}

func (s memQuestionStore) Type() domain.QuizType { return s.t }

func (s memQuestionStore) BulkInsert(_ context.Context, items []domain.Question) ([]int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("questions.insert"); err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		if item.Type() != s.t {
			return nil, fmt.Errorf("%s store got %s", s.t, item.Type())
		}
		ids[i] = s.db.id()
		s.db.state.questions[s.t][ids[i]] = item.WithID(ids[i])
	}
	return ids, nil
}

func (s memQuestionStore) BulkFetch(_ context.Context, ids []int64) ([]domain.Question, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]domain.Question, len(ids))
	for i, id := range ids {
		q, ok := s.db.state.questions[s.t][id]
		if !ok {
			return nil, fmt.Errorf("%s question %d not found", s.t, id)
		}
		out[i] = q
	}
	return out, nil
}

func (s memQuestionStore) BulkDelete(_ context.Context, ids []int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("questions.delete"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(s.db.state.questions[s.t], id)
	}
	return nil
}

type memRegistry struct {
	db *memDB
}

func (r memRegistry) Store(t domain.QuizType) (domain.QuestionStore, error) {
	if !t.Valid() {
		return nil, domain.NewValidationErrors(domain.MsgInvalidQuizType)
	}
	return memQuestionStore{db: r.db, t: t}, nil
}

type memAnswerRepo struct {
	db *memDB
}

func (r memAnswerRepo) Create(_ context.Context, answer *domain.QuizAnswer) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !answer.IsAnonymous() {
		for _, a := range r.db.state.answers {
			if a.QuizID == answer.QuizID && a.UserID == answer.UserID {
				return 0, domain.ErrAlreadyAnswered
			}
		}
	}
	answer.ID = r.db.id()
	r.db.state.answers = append(r.db.state.answers, *answer)
	return answer.ID, nil
}

func (r memAnswerRepo) Exists(_ context.Context, quizID, userID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.state.answers {
		if a.QuizID == quizID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memAnswerRepo) AnsweredQuizIDs(_ context.Context, userID int64, quizIDs []int64) (map[int64]bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range quizIDs {
		wanted[id] = true
	}
	out := map[int64]bool{}
	for _, a := range r.db.state.answers {
		if a.UserID == userID && wanted[a.QuizID] {
			out[a.QuizID] = true
		}
	}
	return out, nil
}

func (r memAnswerRepo) filter(match func(domain.QuizAnswer) bool) []*domain.QuizAnswer {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.QuizAnswer
	for _, a := range r.db.state.answers {
		if match(a) {
			a := a
			out = append(out, &a)
		}
	}
	return out
}

func (r memAnswerRepo) ListByQuizID(_ context.Context, quizID int64) ([]*domain.QuizAnswer, error) {
	return r.filter(func(a domain.QuizAnswer) bool { return a.QuizID == quizID }), nil
}

func (r memAnswerRepo) ListByUserID(_ context.Context, userID int64) ([]*domain.QuizAnswer, error) {
	return r.filter(func(a domain.QuizAnswer) bool { return a.UserID == userID }), nil
}

type memUserRepo struct {
	db *memDB
}

func (r memUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.state.users {
		if u.Name == user.Name {
			return 0, domain.NewValidationErrors("Username already exist")
		}
		if u.Email == user.Email {
			return 0, domain.NewValidationErrors("Email already exist")
		}
	}
	user.ID = r.db.id()
	r.db.state.users[user.ID] = *user
	return user.ID, nil
}

func (r memUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.state.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r memUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Name == name })
}

func (r memUserRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("users.get"); err != nil {
		return nil, err
	}
	out := map[int64]*domain.User{}
	for _, id := range ids {
		if u, ok := r.db.state.users[id]; ok {
			u := u
			out[id] = &u
		}
	}
	return out, nil
}

func (r memUserRepo) update(id int64, apply func(*domain.User) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.state.users[id]
	if !ok {
		return domain.NewUserNotFoundError(id)
	}
	if err := apply(&u); err != nil {
		return err
	}
	r.db.state.users[id] = u
	return nil
}

func (r memUserRepo) UpdateName(_ context.Context, id int64, name string) error {
	return r.update(id, func(u *domain.User) error {
		for _, other := range r.db.state.users {
			if other.ID != id && other.Name == name {
				return domain.NewValidationErrors("Username already exist")
			}
		}
		u.Name = name
		return nil
	})
}

func (r memUserRepo) UpdateRole(_ context.Context, id int64, role string) error {
	return r.update(id, func(u *domain.User) error { u.Role = role; return nil })
}

func (r memUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return r.update(id, func(u *domain.User) error { u.PasswordHash = passwordHash; return nil })
}

func (r memUserRepo) UpdateImagePath(_ context.Context, id int64, imagePath string) error {
	return r.update(id, func(u *domain.User) error { u.ImagePath = imagePath; return nil })
}

func (r memUserRepo) SetRecoveryCode(_ context.Context, id int64, code string) error {
	return r.update(id, func(u *domain.User) error { u.RecoveryCode = code; return nil })
}

// memImageStore records saved objects by name.
type memImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemImageStore() *memImageStore {
	return &memImageStore{objects: map[string][]byte{}}
}

func (s *memImageStore) Save(_ context.Context, name string, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.objects[name] = data
	return nil
}

func (s *memImageStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

func (s *memImageStore) URL(name string) string {
	return "/uploads/" + name
}

func (s *memImageStore) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for name := range s.objects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *memImageStore) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

var errStoreDown = errors.New("store unavailable")

// --- builders ---

func textOf(n int, prefix string) string {
	if len(prefix) >= n {
		return prefix[:n]
	}
	return prefix + strings.Repeat("x", n-len(prefix))
}

func minimalMeta() domain.QuizMeta {
	return domain.QuizMeta{
		Name:        textOf(domain.TitleMinLength, "Quiz"),
		Description: textOf(domain.DescriptionMinLength, "About"),
		Topic:       textOf(domain.TopicMinLength, "Topic"),
		Public:      true,
	}
}

func mcItems(n int) []domain.Question {
	items := make([]domain.Question, n)
	for i := range items {
		items[i] = domain.MultipleChoice{
			QuestionCommon: domain.QuestionCommon{
				Text:   fmt.Sprintf("Question %02d xxxx", i+1),
				Timer:  domain.TimerMin,
				Points: domain.PointsMin,
			},
			Options: [4]string{"a", "b", "c", "d"},
			Answer:  domain.ChoiceA,
		}
	}
	return items
}

func identificationItems(n int) []domain.Question {
	items := make([]domain.Question, n)
	for i := range items {
		items[i] = domain.Identification{
			QuestionCommon: domain.QuestionCommon{
				Text:   fmt.Sprintf("Identify thing %02d", i+1),
				Timer:  domain.DefaultTimer,
				Points: domain.DefaultPoints,
			},
			Answer: "Answer",
		}
	}
	return items
}

func draftOf(t domain.QuizType, items []domain.Question) domain.QuizDraft {
	return domain.QuizDraft{Meta: minimalMeta(), Type: t, Items: items}
}
