package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"
	"github.com/DhawalShankar/vartalang-sub001/internal/middleware"
)

// notificationDTO is the wire shape of a notification.
type notificationDTO struct {
	ID             uint64    `json:"id"`
	Type           string    `json:"type"`
	SenderID       uint64    `json:"senderId"`
	RelatedMatchID *uint64   `json:"relatedMatchId,omitempty"`
	RelatedChatID  *string   `json:"relatedChatId,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toNotificationDTO(n db.Notification) notificationDTO {
	return notificationDTO{
		ID:             n.ID,
		Type:           n.Type,
		SenderID:       n.SenderID,
		RelatedMatchID: n.RelatedMatchID,
		RelatedChatID:  n.RelatedChatID,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}

// HandleScore returns the compatibility score between the acting user and
// the candidate in the path.
func (s *Service) HandleScore(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	candidateID, err := pathID(r, "candidateId")
	if err != nil {
		writeError(w, err)
		return
	}

	total, breakdown, err := s.ScoreCandidate(r.Context(), actingUserID, candidateID)
	if err != nil {
		s.appCtx.Logger.Error("ScoreCandidate failed", "candidate_id", candidateID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"breakdown": breakdown,
	})
}

// HandleCreateRequest creates a pending match request from the acting user
// to the receiver named in the body.
func (s *Service) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	var body struct {
		ReceiverID uint64 `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, svcErr.Validation("invalid request body"))
		return
	}

	req, err := s.CreateRequest(r.Context(), actingUserID, body.ReceiverID)
	if err != nil {
		s.appCtx.Logger.Debug("CreateRequest failed", "sender", actingUserID, "receiver", body.ReceiverID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         req.ID,
		"senderId":   req.SenderID,
		"receiverId": req.ReceiverID,
		"status":     req.Status,
		"createdAt":  req.CreatedAt,
	})
}

// HandleAccept accepts a pending request. Losing a race is not an error:
// the response carries status already_processed with the decided outcome.
func (s *Service) HandleAccept(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.Accept)
}

// HandleReject rejects a pending request.
func (s *Service) HandleReject(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.Reject)
}

func (s *Service) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, requestID, actingUserID uint64) (*Outcome, error),
) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := op(r.Context(), requestID, actingUserID)
	if err != nil {
		s.appCtx.Logger.Debug("transition failed", "request_id", requestID, "acting_user", actingUserID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// HandleListNotifications returns a page of the acting user's notifications.
func (s *Service) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	var pageToken *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		pageToken = &t
	}

	notifs, nextToken, err := s.Notifications(r.Context(), actingUserID, pageToken)
	if err != nil {
		s.appCtx.Logger.Error("ListFor failed", "user_id", actingUserID, "err", err)
		writeError(w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(notifs))
	for _, n := range notifs {
		dtos = append(dtos, toNotificationDTO(n))
	}

	resp := map[string]any{"notifications": dtos}
	if nextToken != nil {
		resp["nextPageToken"] = *nextToken
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleNotificationCount returns the acting user's live notification count.
func (s *Service) HandleNotificationCount(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	count, err := s.NotificationCount(r.Context(), actingUserID)
	if err != nil {
		s.appCtx.Logger.Error("NotificationCount failed", "user_id", actingUserID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// HandleDismiss deletes one of the acting user's notifications.
func (s *Service) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	notifID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.Dismiss(r.Context(), notifID, actingUserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearAll bulk-rejects the acting user's pending match requests.
func (s *Service) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, svcErr.Forbidden("missing identity"))
		return
	}

	cleared, err := s.ClearAllPending(r.Context(), actingUserID)
	if err != nil {
		s.appCtx.Logger.Error("ClearAllPending failed", "user_id", actingUserID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation(name + " must be a valid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, svcErr.HTTPStatus(err), map[string]string{"error": svcErr.ClientMessage(err)})
}
