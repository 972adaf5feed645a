package routes

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
)

type quizStartResponse struct {
	Message     string `json:"message"`
	QuizSession struct {
		ID        string `json:"id"`
		Score     int    `json:"score"`
		Questions []struct {
			ID       string   `json:"id"`
			Question string   `json:"question"`
			Options  []string `json:"options"`
		} `json:"questions"`
	} `json:"quizSession"`
}

type quizFixture struct {
	classID    string
	categoryID string
	questions  []models.Question
}

func (s *testServer) quizFixture(n int) quizFixture {
	s.t.Helper()
	_, admin := s.createUser("quizadmin", models.RoleAdmin)
	class := s.addClass(admin, "Geography")
	category := s.addCategory(admin, class.ID.String(), "Capitals")

	f := quizFixture{classID: class.ID.String(), categoryID: category.ID.String()}
	capitals := []struct{ q, a string }{
		{"Capital of France?", "Paris"},
		{"Capital of Japan?", "Tokyo"},
		{"Capital of Peru?", "Lima"},
		{"Capital of Kenya?", "Nairobi"},
	}
	for i := 0; i < n; i++ {
		c := capitals[i%len(capitals)]
		f.questions = append(f.questions, s.addQuestion(admin, f.classID, f.categoryID, c.q, c.a, "easy"))
	}
	return f
}

func (s *testServer) startQuiz(token string, f quizFixture, num int) quizStartResponse {
	s.t.Helper()
	w := s.do(request{method: http.MethodPost, path: "/quiz/start", token: token, body: map[string]interface{}{
		"classId":      f.classID,
		"categoryId":   f.categoryID,
		"difficulty":   "easy",
		"numQuestions": num,
	}})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var resp quizStartResponse
	decode(s.t, w, &resp)
	return resp
}

func TestQuizLifecycle(t *testing.T) {
	s := newTestServer(t)
	f := s.quizFixture(3)
	_, token := s.createUser("player", models.RolePathfinder)

	started := s.startQuiz(token, f, 2)
	require.Len(t, started.QuizSession.Questions, 2)
	assert.Equal(t, 0, started.QuizSession.Score)
	assert.Equal(t, f.questions[0].ID.String(), started.QuizSession.Questions[0].ID)
	// đáp án không được trả về cho client
	assert.NotContains(t, s.lastStartBody(token, f), `"answer"`)

	sessionID := started.QuizSession.ID
	submit := func(questionID, answer string) *quizSubmitResponse {
		w := s.do(request{method: http.MethodPost, path: "/quiz/submit", token: token, body: map[string]string{
			"sessionId":  sessionID,
			"questionId": questionID,
			"userAnswer": answer,
		}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp quizSubmitResponse
		decode(t, w, &resp)
		return &resp
	}

	first := submit(f.questions[0].ID.String(), "Paris")
	assert.True(t, first.IsCorrect)
	assert.Equal(t, 1, first.Score)

	second := submit(f.questions[1].ID.String(), "tokyo")
	assert.False(t, second.IsCorrect)
	assert.Equal(t, 1, second.Score)

	// câu hỏi không nằm trong phiên
	w := s.do(request{method: http.MethodPost, path: "/quiz/submit", token: token, body: map[string]string{
		"sessionId":  sessionID,
		"questionId": f.questions[2].ID.String(),
		"userAnswer": "Lima",
	}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/quiz/end", token: token, body: map[string]string{"sessionId": sessionID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ended struct {
		History models.HistoryRecord `json:"history"`
	}
	decode(t, w, &ended)
	assert.Equal(t, 1, ended.History.Score)
	assert.Equal(t, f.classID, ended.History.Class)
	assert.Equal(t, f.categoryID, ended.History.Category)
	assert.Equal(t, models.DifficultyEasy, ended.History.Difficulty)
	require.Len(t, ended.History.UserAnswers, 2)
	assert.Equal(t, f.questions[0].ID, ended.History.UserAnswers[0].QuestionID)
	assert.True(t, ended.History.UserAnswers[0].IsCorrect)
	assert.Equal(t, "tokyo", ended.History.UserAnswers[1].UserAnswer)

	w = s.do(request{method: http.MethodPost, path: "/quiz/end", token: token, body: map[string]string{"sessionId": sessionID}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/history", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.HistoryRecord
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, ended.History.ID, history[0].ID)
}

type quizSubmitResponse struct {
	IsCorrect bool `json:"isCorrect"`
	Score     int  `json:"score"`
}

// lastStartBody bắt đầu một phiên mới và trả về body thô.
func (s *testServer) lastStartBody(token string, f quizFixture) string {
	w := s.do(request{method: http.MethodPost, path: "/quiz/start", token: token, body: map[string]interface{}{
		"classId":      f.classID,
		"categoryId":   f.categoryID,
		"difficulty":   "easy",
		"numQuestions": 1,
	}})
	require.Equal(s.t, http.StatusCreated, w.Code)
	return w.Body.String()
}

func TestQuizStartValidation(t *testing.T) {
	s := newTestServer(t)
	f := s.quizFixture(1)
	_, token := s.createUser("player", models.RolePathfinder)

	for _, body := range []map[string]interface{}{
		{"classId": f.classID, "categoryId": f.categoryID, "difficulty": "easy", "numQuestions": 0},
		{"classId": f.classID, "categoryId": f.categoryID, "difficulty": "legendary", "numQuestions": 1},
		{"classId": "nope", "categoryId": f.categoryID, "difficulty": "easy", "numQuestions": 1},
	} {
		w := s.do(request{method: http.MethodPost, path: "/quiz/start", token: token, body: body})
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	// ít câu hỏi hơn yêu cầu thì trả về số câu hiện có
	resp := s.startQuiz(token, f, 10)
	assert.Len(t, resp.QuizSession.Questions, 1)

	assert.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodPost, path: "/quiz/start"}).Code)
}

func TestQuizSessionOwnership(t *testing.T) {
	s := newTestServer(t)
	f := s.quizFixture(1)
	_, owner := s.createUser("owner", models.RolePathfinder)
	_, intruder := s.createUser("intruder", models.RolePathfinder)

	started := s.startQuiz(owner, f, 1)

	w := s.do(request{method: http.MethodPost, path: "/quiz/submit", token: intruder, body: map[string]string{
		"sessionId":  started.QuizSession.ID,
		"questionId": f.questions[0].ID.String(),
		"userAnswer": "Paris",
	}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/quiz/end", token: intruder, body: map[string]string{"sessionId": started.QuizSession.ID}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/quiz/end", token: owner, body: map[string]string{"sessionId": "00000000-0000-0000-0000-000000000001"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentQuizSubmitsAllCount(t *testing.T) {
	s := newTestServer(t)
	f := s.quizFixture(1)
	_, token := s.createUser("player", models.RolePathfinder)
	started := s.startQuiz(token, f, 1)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.do(request{method: http.MethodPost, path: "/quiz/submit", token: token, body: map[string]string{
				"sessionId":  started.QuizSession.ID,
				"questionId": f.questions[0].ID.String(),
				"userAnswer": "Paris",
			}})
		}()
	}
	wg.Wait()

	var session models.QuizSession
	require.NoError(t, s.db.First(&session, "id = ?", started.QuizSession.ID).Error)
	assert.Equal(t, n, session.Score)
}

func TestHistoryAddAndExport(t *testing.T) {
	s := newTestServer(t)
	_, token := s.createUser("player", models.RolePathfinder)
	_, other := s.createUser("other", models.RolePathfinder)

	w := s.do(request{method: http.MethodPost, path: "/history/add", token: token, body: map[string]interface{}{
		"category":   "capitals",
		"class":      "geography",
		"difficulty": "hard",
		"score":      3,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodPost, path: "/history/add", token: token, body: map[string]interface{}{"score": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 64 ký tự (kể cả có dấu) là giới hạn của cột
	for _, tc := range []struct {
		category string
		want     int
	}{
		{strings.Repeat("ệ", 64), http.StatusCreated},
		{strings.Repeat("x", 65), http.StatusBadRequest},
	} {
		w = s.do(request{method: http.MethodPost, path: "/history/add", token: token, body: map[string]interface{}{
			"category":   tc.category,
			"class":      "geography",
			"difficulty": "easy",
		}})
		assert.Equal(t, tc.want, w.Code, w.Body.String())
	}

	w = s.do(request{method: http.MethodGet, path: "/history", token: other})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/history/export", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// file xlsx là zip
	assert.Equal(t, "PK", w.Body.String()[:2])
}
