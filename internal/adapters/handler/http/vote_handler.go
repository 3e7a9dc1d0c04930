package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type VoteHandler struct {
	ledger  ports.VoteLedger
	summary ports.SummaryService
}

func NewVoteHandler(ledger ports.VoteLedger, summary ports.SummaryService) *VoteHandler {
	return &VoteHandler{
		ledger:  ledger,
		summary: summary,
	}
}

type castVoteRequest struct {
	Candidate string `json:"candidate"`
}

type voteStatusResponse struct {
	HasVoted  bool              `json:"has_voted"`
	Candidate *domain.Candidate `json:"candidate,omitempty"`
	Unknown   bool              `json:"unknown"`
	Error     string            `json:"error,omitempty"`
}

func (h *VoteHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Candidates())
}

// GetMyVote godoc
// @Summary      Vote status of the signed-in account
// @Description  Returns 503 with unknown=true when the status could not be read
// @Tags         votes
// @Success      200
// @Failure      401
// @Failure      503
// @Router       /api/votes/me [get]
func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	status, err := h.ledger.CheckStatus(r.Context(), identity)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, voteStatusResponse{Unknown: true, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, voteStatusResponse{
		HasVoted:  status.HasVoted,
		Candidate: status.Candidate,
	})
}

// CastVote godoc
// @Summary      Casts the signed-in account's vote
// @Tags         votes
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      403
// @Failure      409
// @Failure      503
// @Router       /api/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate := domain.Candidate(req.Candidate)
	if err := h.ledger.CastVote(r.Context(), identity, candidate); err != nil {
		writeError(w, voteErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, voteStatusResponse{HasVoted: true, Candidate: &candidate})
}

func (h *VoteHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.summary.Results(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func voteErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCandidate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyVoted), errors.Is(err, domain.ErrVoteInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrStatusUnknown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
