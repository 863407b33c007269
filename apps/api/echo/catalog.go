package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/catalog"
)

type catalogApi struct {
	conf     *core.Config
	svc      *catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := catalogApi{
		conf:     s.deps.Conf,
		svc:      s.deps.CatalogSvc,
		validate: s.deps.Validate,
	}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.GET("/:id/folders", api.browse)
	sg.GET("/:id/folders/*", api.browse)

	fg := g.Group("/files", jwt)
	fg.POST("", api.upload)
	fg.GET("/:hash", api.download)
	fg.DELETE("/:id", api.destroy, adminMiddleware())

	g.GET("/favorites", api.favorites, jwt)
	g.GET("/years", api.years, jwt)
}

// Handlers

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	subs, err := api.svc.Subjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []catalog.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

type SubjectResponse struct {
	catalog.Subject
	Folders []catalog.Folder `json:"folders"`
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	sub, err := api.svc.GetSubject(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Browse(reqCtx, claims.Username, sub.ID, "")
	if err != nil {
		return errors.Wrap(err, "browsing subject root")
	}
	return ctx.JSON(http.StatusOK, SubjectResponse{Subject: sub, Folders: view.Folders})
}

func (api *catalogApi) browse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	view, err := api.svc.Browse(ctx.Request().Context(), claims.Username, ctx.Param("id"), ctx.Param("*"))
	if err != nil {
		return errors.Wrap(err, "browsing folder")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *catalogApi) upload(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file is required"})
	}
	if fh.Size > api.conf.Filestore.MaxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	year, _ := strconv.Atoi(ctx.FormValue("year"))
	data := catalog.NewFile{
		Name:        fh.Filename,
		SubjectID:   ctx.FormValue("subject_id"),
		Category:    ctx.FormValue("category"),
		Year:        year,
		Subtype:     ctx.FormValue("subtype"),
		ContentType: fh.Header.Get("Content-Type"),
		Uploader:    claims.Username,
	}
	if err = data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer src.Close()

	rec, err := api.svc.Upload(ctx.Request().Context(), data, src)
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *catalogApi) download(ctx echo.Context) error {
	rec, rc, err := api.svc.Download(ctx.Request().Context(), ctx.Param("hash"))
	if err != nil {
		return errors.Wrap(err, "downloading file")
	}
	defer rc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+rec.Name+`"`)
	return ctx.Stream(http.StatusOK, rec.ContentType, rc)
}

func (api *catalogApi) destroy(ctx echo.Context) error {
	if err := api.svc.RemoveFile(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing file")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) favorites(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	files, err := api.svc.FavoriteFiles(ctx.Request().Context(), claims.Username)
	if err != nil {
		return errors.Wrap(err, "querying favorites")
	}
	if files == nil {
		files = []catalog.FileInfo{}
	}
	return ctx.JSON(http.StatusOK, files)
}

func (api *catalogApi) years(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.YearPeriods())
}
