package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SessionStore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"baias/internal/auth/metrics"
	"baias/internal/auth/models"
	"baias/internal/auth/service/mocks"
	"baias/internal/auth/store/session"
	"baias/internal/platform/logger"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/sentinel"
	"baias/pkg/requestcontext"
)

const password = "admin123"

// GuardSuite covers the admin guard state machine:
//   - Anonymous -> Admin on the correct password
//   - a wrong password drops the session to Anonymous
//   - Logout always ends in Anonymous
//   - mutations require Admin
type GuardSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *session.InMemorySessionStore
	metrics *metrics.Metrics
	svc     *Service
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithClientMetadata(s.ctx, "10.0.0.7", "test-agent")
	s.store = session.NewWithClock(func() time.Time { return s.now })
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.svc = New(s.store, password,
		WithSessionTTL(time.Hour),
		WithLogger(logger.Discard()),
		WithMetrics(s.metrics),
	)
}

func (s *GuardSuite) TestLoginWithCorrectPassword() {
	sess, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)
	s.True(sess.IsAdmin)
	s.Equal("10.0.0.7", sess.ClientIP)
	s.Equal("test-agent", sess.UserAgent)
	s.Equal(s.now.Add(time.Hour), sess.ExpiresAt)

	stored, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.True(stored.IsAdmin)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues(OutcomeSuccess)))
}

func (s *GuardSuite) TestLoginRotatesSessionID() {
	first, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)

	second, err := s.svc.Login(s.ctx, first.ID, password)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	_, err = s.store.FindByID(s.ctx, first.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *GuardSuite) TestWrongPasswordDemotes() {
	sess, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)

	for _, attempt := range []string{"", "admin", "ADMIN123", "admin123 "} {
		_, err = s.svc.Login(s.ctx, sess.ID, attempt)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), attempt)
	}

	stored, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.False(stored.IsAdmin)
	s.Equal(4.0, testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues(OutcomeRejected)))
}

func (s *GuardSuite) TestWrongPasswordWithoutSession() {
	_, err := s.svc.Login(s.ctx, uuid.New(), "nope")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *GuardSuite) TestLogout() {
	sess, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(s.ctx, sess.ID))
	_, err = s.svc.Resolve(s.ctx, sess.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.NoError(s.svc.Logout(s.ctx, uuid.Nil), "logout is unconditional")
	s.NoError(s.svc.Logout(s.ctx, uuid.New()))
}

func (s *GuardSuite) TestResolveTouchesAtMostOncePerMinute() {
	sess, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)

	later := requestcontext.WithTime(s.ctx, s.now.Add(30*time.Second))
	got, err := s.svc.Resolve(later, sess.ID)
	s.Require().NoError(err)
	s.Equal(s.now, got.LastSeenAt)

	muchLater := requestcontext.WithTime(s.ctx, s.now.Add(2*time.Minute))
	got, err = s.svc.Resolve(muchLater, sess.ID)
	s.Require().NoError(err)
	s.Equal(s.now.Add(2*time.Minute), got.LastSeenAt)
}

func (s *GuardSuite) TestResolveExpired() {
	sess, err := s.svc.Login(s.ctx, uuid.Nil, password)
	s.Require().NoError(err)

	s.now = s.now.Add(time.Hour)
	_, err = s.svc.Resolve(s.ctx, sess.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GuardSuite) TestStatusAndRequireAdmin() {
	s.False(s.svc.Status(s.ctx).IsAdmin)
	s.True(dErrors.HasCode(s.svc.RequireAdmin(s.ctx), dErrors.CodeUnauthorized))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Denied))

	admin := requestcontext.WithAdmin(s.ctx, true)
	s.True(s.svc.Status(admin).IsAdmin)
	s.NoError(s.svc.RequireAdmin(admin))
}

// GuardStoreFailureSuite drives the guard against a mocked store to cover
// storage failures.
type GuardStoreFailureSuite struct {
	suite.Suite
	store *mocks.MockSessionStore
	svc   *Service
}

func TestGuardStoreFailureSuite(t *testing.T) {
	suite.Run(t, new(GuardStoreFailureSuite))
}

func (s *GuardStoreFailureSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = mocks.NewMockSessionStore(ctrl)
	s.svc = New(s.store, password, WithLogger(logger.Discard()))
}

func (s *GuardStoreFailureSuite) TestLoginSaveFails() {
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	_, err := s.svc.Login(context.Background(), uuid.Nil, password)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
}

func (s *GuardStoreFailureSuite) TestLoginStillSucceedsWhenOldSessionCannotBeDeleted() {
	old := uuid.New()
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.store.EXPECT().Delete(gomock.Any(), old).Return(errors.New("redis down"))

	sess, err := s.svc.Login(context.Background(), old, password)
	s.Require().NoError(err)
	s.True(sess.IsAdmin)
}

func (s *GuardStoreFailureSuite) TestRejectedLoginIgnoresDemoteFailure() {
	id := uuid.New()
	s.store.EXPECT().FindByID(gomock.Any(), id).Return(nil, errors.New("redis down"))

	_, err := s.svc.Login(context.Background(), id, "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *GuardStoreFailureSuite) TestResolveStoreFailure() {
	s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	_, err := s.svc.Resolve(context.Background(), uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
}

func (s *GuardStoreFailureSuite) TestLogoutStoreFailure() {
	s.store.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	err := s.svc.Logout(context.Background(), uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
}

func (s *GuardStoreFailureSuite) TestDemoteSkipsAnonymousSession() {
	id := uuid.New()
	s.store.EXPECT().FindByID(gomock.Any(), id).Return(&models.Session{ID: id}, nil)

	_, err := s.svc.Login(context.Background(), id, "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
