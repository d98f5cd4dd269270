package matching

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"
	"github.com/DhawalShankar/vartalang-sub001/internal/match"
	"github.com/DhawalShankar/vartalang-sub001/internal/repository"
)

// Outcome statuses returned by Accept/Reject. already_processed is a normal
// outcome, not a failure: it carries the status and chatId some concurrent
// caller decided, so the losing client can proceed as if it had won.
const (
	OutcomeAccepted         = "accepted"
	OutcomeRejected         = "rejected"
	OutcomeAlreadyProcessed = "already_processed"
)

// Outcome is the result of an accept or reject call.
type Outcome struct {
	Status     string  `json:"status"`
	Resolution string  `json:"resolution,omitempty"` // terminal status when already_processed
	ChatID     *string `json:"chatId,omitempty"`
}

// Service coordinates the match-request lifecycle: scoring, creation,
// accept/reject transitions, chat provisioning and the notification
// projection derived from it.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	requests *repository.MatchRequestRepository
	chats    *repository.ChatSessionRepository
	notifs   *repository.NotificationRepository
}

// NewService creates the coordinator with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		requests: repository.NewMatchRequestRepository(appCtx.DB),
		chats:    repository.NewChatSessionRepository(appCtx.DB),
		notifs:   repository.NewNotificationRepository(appCtx.DB),
	}
}

// ScoreCandidate computes the compatibility between the acting user and a
// candidate and returns the total with its breakdown.
func (s *Service) ScoreCandidate(
	ctx context.Context,
	requesterID, candidateID uint64,
) (int, match.Breakdown, error) {
	if requesterID == candidateID {
		return 0, match.Breakdown{}, svcErr.Validation("cannot score yourself")
	}

	requester, err := s.users.Get(ctx, requesterID)
	if err != nil {
		return 0, match.Breakdown{}, err
	}
	candidate, err := s.users.Get(ctx, candidateID)
	if err != nil {
		return 0, match.Breakdown{}, err
	}

	total, breakdown := match.Score(match.ProfileFromUser(requester), match.ProfileFromUser(candidate))
	return total, breakdown, nil
}

// CreateRequest creates a pending match request and notifies the receiver.
//
// Behavior:
//   - Sender and receiver must differ and the receiver must exist.
//   - Fails with ErrDuplicatePending if a pending request already exists
//     between the pair in either direction.
//   - Emits exactly one match_request notification to the receiver.
func (s *Service) CreateRequest(
	ctx context.Context,
	senderID, receiverID uint64,
) (*db.MatchRequest, error) {
	if senderID == receiverID {
		return nil, svcErr.Validation("cannot send a match request to yourself")
	}
	if _, err := s.users.Get(ctx, receiverID); err != nil {
		return nil, err
	}

	req, err := s.requests.Create(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	notif := &db.Notification{
		Type:           db.NotifMatchRequest,
		RecipientID:    receiverID,
		SenderID:       senderID,
		RelatedMatchID: &req.ID,
	}
	if err := s.notifs.Create(ctx, notif); err != nil {
		// The request stands; listing falls back to the DB state.
		s.appCtx.Logger.Error("failed to emit match_request notification", "request_id", req.ID, "err", err)
	}
	s.invalidateNotifCount(ctx, receiverID)

	return req, nil
}

// Accept transitions a pending request to accepted, provisions the chat
// session and attaches its id, all within one transaction.
//
// Behavior:
//   - Only the designated receiver may accept; anyone else gets a
//     ForbiddenError regardless of request state.
//   - The CAS picks one winner among racing callers; losers get an
//     already_processed outcome carrying the decided status and chatId.
//   - The chat session is reused if the pair already has one from an
//     earlier match.
func (s *Service) Accept(ctx context.Context, requestID, actingUserID uint64) (*Outcome, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != actingUserID {
		return nil, svcErr.Forbidden("only the receiver can accept a match request")
	}

	var winner *db.MatchRequest
	var already *db.MatchRequest
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		treq := s.requests.WithTx(tx)

		updated, err := treq.TryTransition(ctx, requestID, db.StatusAccepted)
		if err != nil {
			already = updated
			return err
		}

		session, err := s.chats.WithTx(tx).GetOrCreate(ctx, req.SenderID, req.ReceiverID)
		if err != nil {
			return err
		}
		if err := treq.AttachChat(ctx, requestID, session.ID); err != nil {
			return err
		}

		updated.ChatID = &session.ID
		winner = updated
		return nil
	})
	if errors.Is(err, svcErr.ErrAlreadyProcessed) {
		return alreadyProcessed(already), nil
	}
	if err != nil {
		return nil, err
	}

	s.onRequestResolved(ctx, winner)
	return &Outcome{Status: OutcomeAccepted, ChatID: winner.ChatID}, nil
}

// Reject transitions a pending request to rejected. No chat side effect
// under any circumstance.
func (s *Service) Reject(ctx context.Context, requestID, actingUserID uint64) (*Outcome, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != actingUserID {
		return nil, svcErr.Forbidden("only the receiver can reject a match request")
	}

	updated, err := s.requests.TryTransition(ctx, requestID, db.StatusRejected)
	if errors.Is(err, svcErr.ErrAlreadyProcessed) {
		return alreadyProcessed(updated), nil
	}
	if err != nil {
		return nil, err
	}

	s.onRequestResolved(ctx, updated)
	return &Outcome{Status: OutcomeRejected}, nil
}

// Notifications returns a page of live notifications for a user.
func (s *Service) Notifications(
	ctx context.Context,
	userID uint64,
	pageToken *string,
) ([]db.Notification, *string, error) {
	return s.notifs.ListFor(ctx, userID, pageToken, notificationPageSize)
}

const notificationPageSize = 20

// NotificationCount returns how many live notifications a user has.
// Cache-first strategy:
//  1. Attempts to read from Redis (notif:count:userID).
//  2. On cache miss or parse error, falls back to the DB count.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) NotificationCount(ctx context.Context, userID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForNotifCount(userID)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			// refresh TTL since this user is active
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
			return n, nil
		}
	}

	count, err := s.notifs.CountFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.UpdateNotifCount(ctx, userID, count)

	return count, nil
}

// Dismiss deletes one of the acting user's notifications.
func (s *Service) Dismiss(ctx context.Context, notificationID, actingUserID uint64) error {
	if err := s.notifs.Dismiss(ctx, notificationID, actingUserID); err != nil {
		return err
	}
	s.invalidateNotifCount(ctx, actingUserID)
	return nil
}

// ClearAllPending bulk-rejects every pending match request addressed to
// the user and retires the associated notifications.
//
// Behavior:
//   - Each request goes through the same CAS as a single reject, so a
//     concurrent accept that races in keeps its win.
//   - The returned count is the number of requests this call actually
//     transitioned; it may be less than the caller's stale view, and is
//     authoritative. Callers should re-fetch the notification list.
func (s *Service) ClearAllPending(ctx context.Context, userID uint64) (int, error) {
	pending, err := s.requests.ListPendingForReceiver(ctx, userID)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, req := range pending {
		updated, err := s.requests.TryTransition(ctx, req.ID, db.StatusRejected)
		switch {
		case errors.Is(err, svcErr.ErrAlreadyProcessed):
			// someone else resolved it mid-clear; still retire the notification
			if derr := s.notifs.DeleteForRequest(ctx, req.ID); derr != nil {
				s.appCtx.Logger.Warn("failed to retire notification", "request_id", req.ID, "err", derr)
			}
		case errors.Is(err, svcErr.ErrNotFound):
			continue
		case err != nil:
			s.invalidateNotifCount(ctx, userID)
			return cleared, err
		default:
			cleared++
			s.onRequestResolved(ctx, updated)
		}
	}

	s.invalidateNotifCount(ctx, userID)
	return cleared, nil
}

// onRequestResolved projects a terminal transition onto notifications:
// retires the originating match_request entry and, on acceptance, emits a
// match_accepted notification to the original sender. All best-effort;
// the transition itself has already committed.
func (s *Service) onRequestResolved(ctx context.Context, req *db.MatchRequest) {
	if err := s.notifs.DeleteForRequest(ctx, req.ID); err != nil {
		s.appCtx.Logger.Warn("failed to retire match_request notification", "request_id", req.ID, "err", err)
	}
	s.invalidateNotifCount(ctx, req.ReceiverID)

	if req.Status == db.StatusAccepted {
		notif := &db.Notification{
			Type:           db.NotifMatchAccepted,
			RecipientID:    req.SenderID,
			SenderID:       req.ReceiverID,
			RelatedMatchID: &req.ID,
			RelatedChatID:  req.ChatID,
		}
		if err := s.notifs.Create(ctx, notif); err != nil {
			s.appCtx.Logger.Error("failed to emit match_accepted notification", "request_id", req.ID, "err", err)
		}
		s.invalidateNotifCount(ctx, req.SenderID)
	}
}

func (s *Service) invalidateNotifCount(ctx context.Context, userID uint64) {
	key := s.appCtx.RedisCache.KeyForNotifCount(userID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Debug("failed to invalidate notification count", "user_id", userID, "err", err)
	}
}

func alreadyProcessed(req *db.MatchRequest) *Outcome {
	out := &Outcome{Status: OutcomeAlreadyProcessed}
	if req != nil && req.Terminal() {
		out.Resolution = req.Status
		out.ChatID = req.ChatID
	}
	return out
}
