package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/pathfinder-backend/controllers"
	"github.com/vnkhanh/pathfinder-backend/models"
)

func TestStatsRoutes(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.createUser("admin", models.RoleAdmin)
	player, playerToken := s.createUser("player", models.RolePathfinder)
	s.addClass(admin, "Chemistry")

	for _, title := range []string{"Atoms", "Bonds"} {
		w := s.do(request{method: http.MethodPost, path: "/resources/add", token: admin, body: map[string]string{"title": title}})
		require.Equal(t, http.StatusCreated, w.Code)
		if title == "Bonds" {
			var r models.Resource
			decode(t, w, &r)
			require.Equal(t, http.StatusOK, s.do(request{method: http.MethodPost, path: "/resources/like/" + r.ID.String(), token: playerToken}).Code)
		}
	}
	for _, rec := range []models.HistoryRecord{
		{UserID: player.ID, Category: "c", Class: "k", Difficulty: models.DifficultyEasy, Score: 4},
		{UserID: player.ID, Category: "c", Class: "k", Difficulty: models.DifficultyEasy, Score: 2},
		{UserID: player.ID, Category: "c", Class: "k", Difficulty: models.DifficultyHard, Score: 1},
	} {
		rec := rec
		require.NoError(t, s.db.Create(&rec).Error)
	}

	assert.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodGet, path: "/stats/overview", token: playerToken}).Code)

	w := s.do(request{method: http.MethodGet, path: "/stats/overview", token: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var overview controllers.DashboardOverview
	decode(t, w, &overview)
	assert.Equal(t, int64(2), overview.TotalUsers)
	assert.Equal(t, int64(1), overview.TotalClasses)
	assert.Equal(t, int64(2), overview.TotalResources)
	assert.InDelta(t, 7.0/3.0, overview.AvgScore, 0.001)
	require.Len(t, overview.TopResources, 2)
	assert.Equal(t, "Bonds", overview.TopResources[0].Title)
	assert.Equal(t, 1, overview.TopResources[0].Likes)

	w = s.do(request{method: http.MethodGet, path: "/stats/difficulty", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	var breakdown []controllers.DifficultyStat
	decode(t, w, &breakdown)
	require.Len(t, breakdown, 2)
	assert.Equal(t, models.DifficultyEasy, breakdown[0].Difficulty)
	assert.Equal(t, int64(2), breakdown[0].Quizzes)
	assert.InDelta(t, 3.0, breakdown[0].AvgScore, 0.001)

	w = s.do(request{method: http.MethodGet, path: "/stats/daily-quizzes?days=3", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	var daily []controllers.Point
	decode(t, w, &daily)
	require.Len(t, daily, 3)
	var total int64
	for _, p := range daily {
		total += p.Count
	}
	assert.Equal(t, int64(3), total)

	assert.Equal(t, http.StatusBadRequest, s.do(request{method: http.MethodGet, path: "/stats/daily-quizzes?days=0", token: admin}).Code)
}

func TestSearchRoute(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.createUser("admin", models.RoleAdmin)
	class := s.addClass(admin, "Astronomy")
	category := s.addCategory(admin, class.ID.String(), "Stars and planets")
	s.addQuestion(admin, class.ID.String(), category.ID.String(), "Closest star to Earth?", "Sun", "easy")
	w := s.do(request{method: http.MethodPost, path: "/resources/add", token: admin, body: map[string]string{"title": "Star charts"}})
	require.Equal(t, http.StatusCreated, w.Code)

	search := func(q string) controllers.SearchResponse {
		w := s.do(request{method: http.MethodGet, path: "/search" + q, token: admin})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp controllers.SearchResponse
		decode(t, w, &resp)
		return resp
	}

	all := search("?query=STAR")
	assert.Equal(t, int64(3), all.Total)
	types := []string{}
	for _, r := range all.Results {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{"category", "resource", "question"}, types)

	paged := search("?query=star&perPage=1&page=2")
	assert.Equal(t, int64(3), paged.Total)
	require.Len(t, paged.Results, 1)
	assert.Equal(t, "resource", paged.Results[0].Type)

	assert.Equal(t, http.StatusBadRequest, s.do(request{method: http.MethodGet, path: "/search", token: admin}).Code)
}
