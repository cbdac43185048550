package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/feed"
	adapterHTTP "github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/workers"
)

type testServer struct {
	router      *gin.Engine
	habits      *repository.InMemoryHabitRepository
	events      *repository.InMemoryTrackingEventRepository
	broker      *feed.MemoryBroker
	coordinator *workers.RefreshCoordinator
	tokens      map[string]string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	habitRepo := repository.NewInMemoryHabitRepository()
	eventRepo := repository.NewInMemoryTrackingEventRepository()
	broker := feed.NewMemoryBroker(32)

	builder := services.NewProgressBuilder(habitRepo, eventRepo, nil, nil)
	coordinator := workers.NewRefreshCoordinator(builder, workers.CoordinatorConfig{
		Debounce:   10 * time.Millisecond,
		RetryDelay: 10 * time.Millisecond,
		Workers:    1,
	})

	tokenSvc := services.NewTokenService("handler-test-secret", "kanso-test", time.Hour)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(services.NewHabitService(habitRepo, broker)),
		TrackingHandler: adapterHTTP.NewTrackingHandler(services.NewTrackingService(eventRepo, habitRepo, broker)),
		ProgressHandler: adapterHTTP.NewProgressHandler(services.NewProgressService(builder, coordinator, nil, nil), 20*time.Millisecond),
		TokenService:    tokenSvc,
		StartTime:       time.Now(),
	})

	tokens := map[string]string{}
	for _, user := range []string{"user-1", "user-2"} {
		token, err := tokenSvc.GenerateToken(user)
		require.NoError(t, err)
		tokens[user] = token
	}

	return &testServer{
		router:      router,
		habits:      habitRepo,
		events:      eventRepo,
		broker:      broker,
		coordinator: coordinator,
		tokens:      tokens,
	}
}

func (s *testServer) do(method, path, user, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[user])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedHabit(t *testing.T, user, title string) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(user, title, "#00FF00", "", domain.PeriodDaily, 2)
	require.NoError(t, err)
	require.NoError(t, s.habits.Create(context.Background(), habit))
	return habit
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
