package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/engagement"
)

type engagementApi struct {
	svc *engagement.Service
}

func registerEngagementAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := engagementApi{svc: s.deps.EngagementSvc}

	fg := g.Group("/files/:id", jwt)
	fg.POST("/vote", api.vote)
	fg.PUT("/favorite", api.addFavorite)
	fg.DELETE("/favorite", api.removeFavorite)
}

type (
	VoteRequest struct {
		Vote *int `json:"vote"`
	}

	VoteResponse struct {
		Score int `json:"score"`
	}
)

// Handlers

func (api *engagementApi) vote(ctx echo.Context) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	if data.Vote == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "vote", Error: "vote is required"})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	score, err := api.svc.SetVote(ctx.Request().Context(), claims.Username, ctx.Param("id"), *data.Vote)
	if err != nil {
		return errors.Wrap(err, "setting vote")
	}
	return ctx.JSON(http.StatusOK, VoteResponse{Score: score})
}

func (api *engagementApi) addFavorite(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.AddFavorite(ctx.Request().Context(), claims.Username, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "adding favorite")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *engagementApi) removeFavorite(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.RemoveFavorite(ctx.Request().Context(), claims.Username, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing favorite")
	}
	return ctx.NoContent(http.StatusNoContent)
}
