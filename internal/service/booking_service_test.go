package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBookingService(repo *MockRepository) *BookingService {
	logger := zerolog.Nop()
	return NewBookingService(repo, nil, &logger)
}

func TestBookingService_CreateBooking(t *testing.T) {
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	t.Run("creates waiting booking", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUser", mock.Anything, int64(7)).Return(&models.User{ID: 7, Name: "Anna"}, nil)
		repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusWaiting && b.ItemID == 3 && b.BookerID == 7
		})).Return(nil)

		svc := newBookingService(repo)
		booking, err := svc.CreateBooking(context.Background(), 7, 3, start, end)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		assert.Equal(t, "Anna", booking.BookerName)
		repo.AssertExpectations(t)
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newBookingService(repo)

		_, err := svc.CreateBooking(context.Background(), 7, 3, end, start)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
		repo.AssertNotCalled(t, "CreateBooking")
	})

	t.Run("rejects zero-length interval", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newBookingService(repo)

		_, err := svc.CreateBooking(context.Background(), 7, 3, start, start)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	})

	t.Run("unknown booker", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUser", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		svc := newBookingService(repo)
		_, err := svc.CreateBooking(context.Background(), 99, 3, start, end)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	stored := func() *models.Booking {
		return &models.Booking{ID: 5, ItemID: 3, ItemOwnerID: 2, BookerID: 7, Status: models.StatusWaiting}
	}

	t.Run("owner approves", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBooking", mock.Anything, int64(5)).Return(stored(), nil)
		repo.On("UpdateBookingStatus", mock.Anything, int64(5), models.StatusApproved).Return(nil)

		svc := newBookingService(repo)
		booking, err := svc.UpdateStatus(context.Background(), 2, 5, true)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusApproved, booking.Status)
		repo.AssertExpectations(t)
	})

	t.Run("owner rejects", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBooking", mock.Anything, int64(5)).Return(stored(), nil)
		repo.On("UpdateBookingStatus", mock.Anything, int64(5), models.StatusRejected).Return(nil)

		svc := newBookingService(repo)
		booking, err := svc.UpdateStatus(context.Background(), 2, 5, false)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetBooking", mock.Anything, int64(5)).Return(stored(), nil)

		svc := newBookingService(repo)
		_, err := svc.UpdateStatus(context.Background(), 7, 5, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateBookingStatus")
	})

	t.Run("decided booking can be decided again", func(t *testing.T) {
		decided := stored()
		decided.Status = models.StatusApproved

		repo := new(MockRepository)
		repo.On("GetBooking", mock.Anything, int64(5)).Return(decided, nil)
		repo.On("UpdateBookingStatus", mock.Anything, int64(5), models.StatusRejected).Return(nil)

		svc := newBookingService(repo)
		booking, err := svc.UpdateStatus(context.Background(), 2, 5, false)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	stored := &models.Booking{ID: 5, ItemOwnerID: 2, BookerID: 7}

	cases := []struct {
		name    string
		userID  int64
		allowed bool
	}{
		{"booker may view", 7, true},
		{"owner may view", 2, true},
		{"stranger is forbidden", 42, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetBooking", mock.Anything, int64(5)).Return(stored, nil)

			svc := newBookingService(repo)
			booking, err := svc.GetBooking(context.Background(), tc.userID, 5)
			if tc.allowed {
				assert.NoError(t, err)
				assert.Equal(t, int64(5), booking.ID)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}
}

func TestBookingService_Listings(t *testing.T) {
	t.Run("booker listing requires known user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UserExists", mock.Anything, int64(99)).Return(false, nil)

		svc := newBookingService(repo)
		_, err := svc.FindByBooker(context.Background(), 99, models.StateAll)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "ListByBooker")
	})

	t.Run("owner listing passes state through", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UserExists", mock.Anything, int64(2)).Return(true, nil)
		repo.On("ListByOwner", mock.Anything, int64(2), models.StateFuture, mock.Anything).
			Return([]models.Booking{{ID: 1}}, nil)

		svc := newBookingService(repo)
		bookings, err := svc.FindByOwner(context.Background(), 2, models.StateFuture)
		assert.NoError(t, err)
		assert.Len(t, bookings, 1)
		repo.AssertExpectations(t)
	})
}
