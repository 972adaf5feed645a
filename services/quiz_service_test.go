package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/testutil"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type quizFixture struct {
	db        *gorm.DB
	userID    uuid.UUID
	class     models.Class
	category  models.Category
	questions []models.Question
}

func newQuizFixture(t *testing.T, n int) *quizFixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	f := &quizFixture{db: db, userID: uuid.New()}
	f.class = models.Class{Name: "Biology"}
	require.NoError(t, db.Create(&f.class).Error)
	f.category = models.Category{Name: "Cells", ClassID: f.class.ID}
	require.NoError(t, db.Create(&f.category).Error)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		q := models.Question{
			Question:   "Q" + string(rune('A'+i)),
			Answer:     "right",
			Options:    []string{"right", "wrong"},
			Difficulty: models.DifficultyEasy,
			ClassID:    f.class.ID,
			CategoryID: f.category.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&q).Error)
		f.questions = append(f.questions, q)
	}
	return f
}

func (f *quizFixture) start(t *testing.T, num int) *models.QuizSession {
	t.Helper()
	session, err := StartQuiz(f.db, StartQuizInput{
		UserID:       f.userID,
		ClassID:      f.class.ID,
		CategoryID:   f.category.ID,
		Difficulty:   models.DifficultyEasy,
		NumQuestions: num,
	})
	require.NoError(t, err)
	return session
}

func TestStartQuizSelectsOldestQuestions(t *testing.T) {
	f := newQuizFixture(t, 5)

	session := f.start(t, 3)
	require.Len(t, session.Questions, 3)
	assert.Equal(t, 0, session.Score)
	assert.False(t, session.StartTime.IsZero())
	for i, q := range session.Questions {
		assert.Equal(t, f.questions[i].ID, q.ID)
		assert.Equal(t, "right", q.Answer)
	}
}

func TestStartQuizWithFewerQuestionsAvailable(t *testing.T) {
	f := newQuizFixture(t, 2)

	session := f.start(t, 10)
	assert.Len(t, session.Questions, 2)
}

func TestStartQuizValidation(t *testing.T) {
	f := newQuizFixture(t, 1)

	_, err := StartQuiz(f.db, StartQuizInput{UserID: f.userID, Difficulty: models.DifficultyEasy, NumQuestions: 0})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = StartQuiz(f.db, StartQuizInput{UserID: f.userID, Difficulty: "impossible", NumQuestions: 1})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestSubmitAnswerScoresCorrectAnswers(t *testing.T) {
	f := newQuizFixture(t, 2)
	session := f.start(t, 2)

	res, err := SubmitAnswer(f.db, f.userID, session.ID, f.questions[0].ID, "right")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1, res.Score)

	res, err = SubmitAnswer(f.db, f.userID, session.ID, f.questions[1].ID, "wrong")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.Score)

	// nộp lại câu đã đúng vẫn được cộng điểm
	res, err = SubmitAnswer(f.db, f.userID, session.ID, f.questions[0].ID, "right")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)

	var count int64
	f.db.Model(&models.QuizAnswer{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestSubmitAnswerErrors(t *testing.T) {
	f := newQuizFixture(t, 1)
	session := f.start(t, 1)

	_, err := SubmitAnswer(f.db, f.userID, uuid.New(), f.questions[0].ID, "right")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = SubmitAnswer(f.db, f.userID, session.ID, uuid.New(), "right")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = SubmitAnswer(f.db, uuid.New(), session.ID, f.questions[0].ID, "right")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestConcurrentSubmitsAllCount(t *testing.T) {
	f := newQuizFixture(t, 1)
	session := f.start(t, 1)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := SubmitAnswer(f.db, f.userID, session.ID, f.questions[0].ID, "right")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored models.QuizSession
	require.NoError(t, f.db.First(&stored, "id = ?", session.ID).Error)
	assert.Equal(t, workers, stored.Score)
}

func TestEndQuizCreatesHistoryAndRemovesSession(t *testing.T) {
	f := newQuizFixture(t, 2)
	session := f.start(t, 2)

	_, err := SubmitAnswer(f.db, f.userID, session.ID, f.questions[0].ID, "right")
	require.NoError(t, err)
	_, err = SubmitAnswer(f.db, f.userID, session.ID, f.questions[1].ID, "nope")
	require.NoError(t, err)

	_, err = EndQuiz(f.db, uuid.New(), session.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	history, err := EndQuiz(f.db, f.userID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Score)
	assert.Equal(t, f.userID, history.UserID)
	assert.Equal(t, f.class.ID.String(), history.Class)
	assert.Equal(t, f.category.ID.String(), history.Category)
	require.Len(t, history.UserAnswers, 2)
	assert.Equal(t, f.questions[0].ID, history.UserAnswers[0].QuestionID)
	assert.True(t, history.UserAnswers[0].IsCorrect)
	assert.Equal(t, "nope", history.UserAnswers[1].UserAnswer)

	var stored models.HistoryRecord
	require.NoError(t, f.db.First(&stored, "id = ?", history.ID).Error)
	assert.Len(t, stored.UserAnswers, 2)

	var sessions, answers int64
	f.db.Model(&models.QuizSession{}).Count(&sessions)
	f.db.Model(&models.QuizAnswer{}).Count(&answers)
	assert.Zero(t, sessions)
	assert.Zero(t, answers)

	_, err = EndQuiz(f.db, f.userID, session.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestEndQuizKeepsSubmitOrderWhenTimestampsTie(t *testing.T) {
	f := newQuizFixture(t, 3)
	session := f.start(t, 3)

	// nộp theo thứ tự ngược với thứ tự câu hỏi
	for i, idx := range []int{2, 0, 1} {
		res, err := SubmitAnswer(f.db, f.userID, session.ID, f.questions[idx].ID, "right")
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Answer.Seq)
	}
	same := time.Now().Truncate(time.Second)
	require.NoError(t, f.db.Model(&models.QuizAnswer{}).
		Where("session_id = ?", session.ID).
		Update("answered_at", same).Error)

	history, err := EndQuiz(f.db, f.userID, session.ID)
	require.NoError(t, err)
	require.Len(t, history.UserAnswers, 3)
	for i, idx := range []int{2, 0, 1} {
		assert.Equal(t, f.questions[idx].ID, history.UserAnswers[i].QuestionID)
	}
}

func TestCleanupStaleSessions(t *testing.T) {
	f := newQuizFixture(t, 1)
	fresh := f.start(t, 1)
	stale := f.start(t, 1)

	_, err := SubmitAnswer(f.db, f.userID, stale.ID, f.questions[0].ID, "right")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.QuizSession{}).
		Where("id = ?", stale.ID).
		Update("start_time", time.Now().Add(-48*time.Hour)).Error)

	deleted, err := CleanupStaleSessions(f.db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.QuizSession
	require.NoError(t, f.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)

	var answers int64
	f.db.Model(&models.QuizAnswer{}).Count(&answers)
	assert.Zero(t, answers)
}
