package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"glaminator/internal/model"
	"glaminator/internal/service"
)

// RewardHandler serves balances and gacha pulls.
type RewardHandler struct {
	ledger service.LedgerService
	pulls  service.PullService
}

// NewRewardHandler creates a new reward handler.
func NewRewardHandler(ledger service.LedgerService, pulls service.PullService) *RewardHandler {
	return &RewardHandler{ledger: ledger, pulls: pulls}
}

// BalancesResponse lists the caller's balance per currency.
type BalancesResponse struct {
	Rewards map[model.RewardType]int64 `json:"rewards"`
}

// GetBalances godoc
// @Summary Reward balances of the caller
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalancesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /rewards [get]
func (h *RewardHandler) GetBalances(c echo.Context) error {
	balances, err := h.ledger.Balances(c.Request().Context(), currentSession(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, BalancesResponse{Rewards: balances})
}

// Pull godoc
// @Summary Pull a random reward
// @Description Rolls a reward and adds it to the caller's balance. Limited to one pull per cooldown.
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PullResult
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /rewards/pull [post]
func (h *RewardHandler) Pull(c echo.Context) error {
	result, err := h.pulls.Pull(c.Request().Context(), currentSession(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// PullStatus godoc
// @Summary Pull cooldown status
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PullStatus
// @Failure 401 {object} errors.ErrorResponse
// @Router /rewards/pull [get]
func (h *RewardHandler) PullStatus(c echo.Context) error {
	status, err := h.pulls.Status(c.Request().Context(), currentSession(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, status)
}

// History godoc
// @Summary Past pulls, newest first
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} model.RewardGrant
// @Failure 401 {object} errors.ErrorResponse
// @Router /rewards/history [get]
func (h *RewardHandler) History(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	grants, err := h.pulls.History(c.Request().Context(), currentSession(c), limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, grants)
}
