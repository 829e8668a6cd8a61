package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitslot/internal/gym"
	"fitslot/internal/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WindowsFor(ctx context.Context, trainerID int, day time.Weekday) ([]scheduling.Interval, error) {
	args := m.Called(ctx, trainerID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scheduling.Interval), args.Error(1)
}

func (m *MockRepository) ListByTrainer(ctx context.Context, trainerID int) ([]TrainerAvailability, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TrainerAvailability), args.Error(1)
}

func (m *MockRepository) AvailableTrainers(ctx context.Context, day time.Weekday, serviceID int) ([]AvailableTrainer, error) {
	args := m.Called(ctx, day, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AvailableTrainer), args.Error(1)
}

type MockTrainers struct {
	mock.Mock
}

func (m *MockTrainers) GetTrainer(ctx context.Context, id int) (*gym.Trainer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gym.Trainer), args.Error(1)
}

func TestService_WindowsFor_UsesWeekdayOfDate(t *testing.T) {
	repo := new(MockRepository)
	// 2026-10-19 is a Monday.
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	repo.On("WindowsFor", mock.Anything, 4, time.Monday).
		Return([]scheduling.Interval{{Start: scheduling.At(9, 0), End: scheduling.At(17, 0)}}, nil)

	windows, err := NewService(repo, new(MockTrainers)).WindowsFor(context.Background(), 4, date)

	require.NoError(t, err)
	assert.Len(t, windows, 1)
	repo.AssertExpectations(t)
}

func TestService_ListTrainerWindows(t *testing.T) {
	repo := new(MockRepository)
	trainers := new(MockTrainers)
	trainers.On("GetTrainer", mock.Anything, 4).Return(&gym.Trainer{ID: 4, IsActive: true}, nil)
	repo.On("ListByTrainer", mock.Anything, 4).Return([]TrainerAvailability{
		{ID: 1, TrainerID: 4, DayOfWeek: time.Friday, StartMinute: scheduling.At(8, 0), EndMinute: scheduling.At(12, 0), IsActive: true},
	}, nil)

	views, err := NewService(repo, trainers).ListTrainerWindows(context.Background(), 4)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Friday", views[0].DayName)
}

func TestHandler_ListTrainerAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := new(MockRepository)
	trainers := new(MockTrainers)
	trainers.On("GetTrainer", mock.Anything, 4).Return(&gym.Trainer{ID: 4, IsActive: true}, nil)
	trainers.On("GetTrainer", mock.Anything, 5).Return(nil, gym.ErrTrainerNotFound)
	repo.On("ListByTrainer", mock.Anything, 4).Return([]TrainerAvailability{
		{ID: 1, TrainerID: 4, DayOfWeek: time.Monday, StartMinute: scheduling.At(9, 0), EndMinute: scheduling.At(17, 0), IsActive: true},
	}, nil)

	r := gin.New()
	r.GET("/trainers/:trainerID/availability", NewHandler(NewService(repo, trainers)).ListTrainerAvailability)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"listed", "/trainers/4/availability", http.StatusOK, `"start":"09:00","end":"17:00"`},
		{"day name", "/trainers/4/availability", http.StatusOK, `"day_name":"Monday"`},
		{"unknown trainer", "/trainers/5/availability", http.StatusNotFound, "Trainer not found"},
		{"bad id", "/trainers/x/availability", http.StatusBadRequest, "Invalid trainer ID"},
		{"zero id", "/trainers/0/availability", http.StatusBadRequest, "Invalid trainer ID"},
		{"negative id", "/trainers/-4/availability", http.StatusBadRequest, "Invalid trainer ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_ListAvailableTrainers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ana := AvailableTrainer{
		Trainer:  gym.Trainer{ID: 1, FirstName: "Ana", LastName: "Kovac", IsActive: true},
		FullName: "Ana Kovac",
		Windows:  []scheduling.Interval{{Start: scheduling.At(9, 0), End: scheduling.At(17, 0)}},
	}
	repo := new(MockRepository)
	// 2026-10-19 is a Monday, 2026-10-24 a Saturday.
	repo.On("AvailableTrainers", mock.Anything, time.Monday, 0).Return([]AvailableTrainer{ana}, nil)
	repo.On("AvailableTrainers", mock.Anything, time.Monday, 10).Return([]AvailableTrainer{}, nil)
	repo.On("AvailableTrainers", mock.Anything, time.Saturday, 0).Return(nil, assert.AnError)

	r := gin.New()
	r.GET("/trainers/available", NewHandler(NewService(repo, new(MockTrainers))).ListAvailableTrainers)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"listed", "/trainers/available?date=2026-10-19", http.StatusOK, `"full_name":"Ana Kovac"`},
		{"windows", "/trainers/available?date=2026-10-19", http.StatusOK, `"windows":[{"start":"09:00","end":"17:00"}]`},
		{"weekday", "/trainers/available?date=2026-10-19", http.StatusOK, `"day_of_week":"Monday"`},
		{"service filter", "/trainers/available?date=2026-10-19&service_id=10", http.StatusOK, `"trainers":[]`},
		{"missing date", "/trainers/available", http.StatusBadRequest, "Invalid date"},
		{"bad service", "/trainers/available?date=2026-10-19&service_id=0", http.StatusBadRequest, "Invalid service ID"},
		{"repository error", "/trainers/available?date=2026-10-24", http.StatusInternalServerError, "Failed to fetch trainers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
