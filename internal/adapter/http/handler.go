package httpadapter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"strconv"

	"rialto/internal/app/activity"
	"rialto/internal/app/contract"
	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/app/stratagem"
	"rialto/internal/domain/economy"
)

type Handler struct {
	CreateActivityUC  activity.CreateUseCase
	CreateContractUC  contract.CreateUseCase
	CreateStratagemUC stratagem.CreateUseCase
	Activities        ports.ActivityRepository
	Contracts         ports.ContractRepository
	Stratagems        ports.StratagemRepository
	Transactions      ports.TransactionRepository
	KPI               kpiSnapshotProvider
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	api := s.Group("/api")
	api.POST("/activities", h.createActivity)
	api.POST("/contracts", h.createContract)
	api.POST("/stratagems", h.createStratagem)
	api.GET("/citizens/:username/activities", h.citizenActivities)
	api.GET("/citizens/:username/transactions", h.citizenTransactions)
	api.GET("/contracts", h.listContracts)
	api.GET("/stratagems/:id", h.getStratagem)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) createActivity(c context.Context, ctx *app.RequestContext) {
	var body activity.CreateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.CreateActivityUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) createContract(c context.Context, ctx *app.RequestContext) {
	var body contract.CreateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.CreateContractUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) createStratagem(c context.Context, ctx *app.RequestContext) {
	var body stratagem.CreateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.CreateStratagemUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) citizenActivities(c context.Context, ctx *app.RequestContext) {
	username := string(ctx.Param("username"))
	if username == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_username", "missing username")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))

	activities, err := h.Activities.ListByCitizen(c, username, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"activities": activities})
}

func (h Handler) citizenTransactions(c context.Context, ctx *app.RequestContext) {
	username := string(ctx.Param("username"))
	if username == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_username", "missing username")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))

	txs, err := h.Transactions.ListByAccount(c, username, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"transactions": txs})
}

func (h Handler) listContracts(c context.Context, ctx *app.RequestContext) {
	contractType := economy.ContractType(ctx.Query("type"))
	if contractType == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_type", "missing type query param")
		return
	}
	status := economy.ContractStatus(ctx.Query("status"))

	contracts, err := h.Contracts.ListByType(c, contractType, status)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"contracts": contracts})
}

func (h Handler) getStratagem(c context.Context, ctx *app.RequestContext) {
	id := string(ctx.Param("id"))
	if id == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_id", "missing id")
		return
	}

	s, err := h.Stratagems.GetByID(c, id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, stratagem.CreateResponse{Stratagem: s})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, activity.ErrInvalidRequest),
		errors.Is(err, activity.ErrInvalidParams),
		errors.Is(err, activity.ErrUnknownActivityType),
		errors.Is(err, contract.ErrInvalidRequest),
		errors.Is(err, contract.ErrInvalidParams),
		errors.Is(err, contract.ErrUnknownContractType),
		errors.Is(err, stratagem.ErrInvalidRequest),
		errors.Is(err, stratagem.ErrInvalidParams),
		errors.Is(err, stratagem.ErrUnknownStratagemType):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, activity.ErrPreconditionFailed),
		errors.Is(err, contract.ErrPreconditionFailed),
		errors.Is(err, stratagem.ErrPreconditionFailed),
		errors.Is(err, ledger.ErrInsufficientFunds):
		writeErrorBody(ctx, consts.StatusConflict, "precondition_failed", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
