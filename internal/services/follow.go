package services

import (
	"errors"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToggleOutcome is the state transition produced by a follow toggle.
type ToggleOutcome string

const (
	OutcomeFollowed         ToggleOutcome = "followed"
	OutcomeUnfollowed       ToggleOutcome = "unfollowed"
	OutcomeRequested        ToggleOutcome = "requested"
	OutcomeRequestWithdrawn ToggleOutcome = "request_withdrawn"
)

// FollowAction is a response to a pending follow request.
type FollowAction string

const (
	ActionAccept FollowAction = "accept"
	ActionReject FollowAction = "reject"
)

// FollowService runs the follow/privacy state machine. Every operation is a
// single transaction; uniqueness conflicts from concurrent toggles are
// mapped to the state the other writer already reached.
type FollowService struct {
	db     *gorm.DB
	notifs *NotificationEngine
	log    *zap.Logger
	now    func() time.Time
}

// NewFollowService creates a FollowService
func NewFollowService(db *gorm.DB, notifs *NotificationEngine, log *zap.Logger) *FollowService {
	return &FollowService{db: db, notifs: notifs, log: log, now: time.Now}
}

// SetNow overrides the clock for tests.
func (s *FollowService) SetNow(now func() time.Time) {
	s.now = now
	s.notifs.SetNow(now)
}

// ToggleFollow advances the (requester, target) pair one step:
//
//	FOLLOWING -> NONE        unfollowed (+ debounce-delete of the follow notification)
//	NONE      -> REQUESTED   requested (private target)
//	REQUESTED -> NONE        request withdrawn (private target)
//	NONE      -> FOLLOWING   followed (public target, + follow notification)
func (s *FollowService) ToggleFollow(requester *models.User, targetUsername string) (ToggleOutcome, error) {
	if requester.Username == targetUsername {
		return "", ErrSelfFollow
	}

	var outcome ToggleOutcome
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		users := repositories.NewPostgresUserRepository(tx)
		follows := repositories.NewPostgresFollowRepository(tx)

		target, err := users.GetUserByUsername(targetUsername)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if target.ID == requester.ID {
			return ErrSelfFollow
		}

		removed, err := follows.DeleteFollow(requester.ID, target.ID)
		if err != nil {
			return err
		}
		if removed {
			outcome = OutcomeUnfollowed
			return notifs.DeleteRecent(target.ID, requester.ID, models.VerbFollow, 0)
		}

		if target.Private {
			req, err := follows.GetRequestByPair(requester.ID, target.ID)
			switch {
			case err == nil:
				outcome = OutcomeRequestWithdrawn
				return follows.DeleteRequest(req.ID)
			case errors.Is(err, gorm.ErrRecordNotFound):
				outcome = OutcomeRequested
				err := follows.CreateRequest(&models.FollowRequest{
					RequesterID: requester.ID,
					TargetID:    target.ID,
					CreatedAt:   s.now(),
				})
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Concurrent toggle already created it.
					return nil
				}
				return err
			default:
				return err
			}
		}

		outcome = OutcomeFollowed
		err = follows.CreateFollow(&models.Follow{
			FollowerID: requester.ID,
			FolloweeID: target.ID,
			CreatedAt:  s.now(),
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		if err != nil {
			return err
		}
		if target.NotifyFollow {
			return notifs.Create(target, requester.ID, models.VerbFollow, 0)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	notifs.Flush()
	return outcome, nil
}

// RespondRequest accepts or rejects a pending follow request. Only the
// request's target may respond; anyone else sees not-found. Accepting
// creates the edge, notifies the requester, and optionally notifies the
// target about the new follower. The request row is deleted either way.
func (s *FollowService) RespondRequest(target *models.User, requestID uint, action FollowAction) error {
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		follows := repositories.NewPostgresFollowRepository(tx)

		req, err := follows.GetRequestByID(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.TargetID != target.ID {
			return ErrNotFound
		}

		if action == ActionAccept {
			if err := s.acceptTx(tx, notifs, target, req); err != nil {
				return err
			}
		}
		return follows.DeleteRequest(req.ID)
	})
	if err != nil {
		return err
	}
	notifs.Flush()
	return nil
}

// AcceptAll accepts every pending request for the target. Requests are
// independent pairs, so the processing order does not affect the final edge
// set or notification count.
func (s *FollowService) AcceptAll(target *models.User) (int, error) {
	accepted := 0
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		follows := repositories.NewPostgresFollowRepository(tx)
		reqs, err := follows.ListRequestsForTarget(target.ID)
		if err != nil {
			return err
		}
		for i := range reqs {
			if err := s.acceptTx(tx, notifs, target, &reqs[i]); err != nil {
				return err
			}
			if err := follows.DeleteRequest(reqs[i].ID); err != nil {
				return err
			}
			accepted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	notifs.Flush()
	return accepted, nil
}

func (s *FollowService) acceptTx(tx *gorm.DB, notifs *NotificationEngine, target *models.User, req *models.FollowRequest) error {
	users := repositories.NewPostgresUserRepository(tx)
	follows := repositories.NewPostgresFollowRepository(tx)

	err := follows.CreateFollow(&models.Follow{
		FollowerID: req.RequesterID,
		FolloweeID: target.ID,
		CreatedAt:  s.now(),
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	requester, err := users.GetUserByID(req.RequesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Requester deleted their account in the meantime; the edge
			// cleanup happened with them.
			return nil
		}
		return err
	}
	if requester.NotifyRequestAccepted {
		if err := notifs.Create(requester, target.ID, models.VerbRequestAccepted, 0); err != nil {
			return err
		}
	}
	if target.NotifyFollow {
		if err := notifs.Create(target, requester.ID, models.VerbFollow, 0); err != nil {
			return err
		}
	}
	return nil
}

// ListRequests returns the pending follow requests aimed at the target.
func (s *FollowService) ListRequests(targetID uint) ([]models.FollowRequest, error) {
	return repositories.NewPostgresFollowRepository(s.db).ListRequestsForTarget(targetID)
}
