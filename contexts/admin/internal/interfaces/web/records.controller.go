// Package web exposes the admin sections as JSON API.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/schoolstore/alog"
	"github.com/go-arrower/schoolstore/attachment"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/repository"
)

func NewRecordsController[E any, P any](
	logger alog.Logger,
	section string,
	attachmentField string,
	app application.App[E, P],
) *RecordsController[E, P] {
	return &RecordsController[E, P]{
		logger:          logger,
		section:         section,
		attachmentField: attachmentField,
		app:             app,
	}
}

// RecordsController serves the CRUD endpoints of one section.
// Create and Update accept JSON bodies or multipart forms with an optional file in attachmentField.
type RecordsController[E any, P any] struct {
	logger alog.Logger

	section         string
	attachmentField string
	app             application.App[E, P]
}

// Register adds all routes of the section to group.
func (rc *RecordsController[E, P]) Register(group *echo.Group) {
	name := "admin." + rc.section

	group.GET("", rc.List()).Name = name + ".list"
	group.GET("/", rc.List())
	group.POST("", rc.Create()).Name = name + ".create"
	group.POST("/", rc.Create())
	group.POST("/reset", rc.Reset()).Name = name + ".reset"
	group.GET("/export", rc.Export()).Name = name + ".export"
	group.GET("/:key", rc.Get()).Name = name + ".get"
	group.GET("/:key/attachment", rc.Attachment()).Name = name + ".attachment"
	group.PATCH("/:key", rc.Update()).Name = name + ".update"
	group.DELETE("/:key", rc.Delete()).Name = name + ".delete"
}

func (rc *RecordsController[E, P]) List() echo.HandlerFunc {
	return func(c echo.Context) error {
		query := application.ListRecordsQuery{Query: c.QueryParam("q")}

		var err error
		if query.Page, err = intParam(c, "page"); err != nil {
			return err
		}

		if query.Size, err = intParam(c, "size"); err != nil {
			return err
		}

		res, err := rc.app.ListRecords.H(c.Request().Context(), query)
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res)
	}
}

func (rc *RecordsController[E, P]) Get() echo.HandlerFunc {
	return func(c echo.Context) error {
		record, err := rc.app.GetRecord.H(c.Request().Context(), application.GetRecordQuery{Key: c.Param("key")})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, record)
	}
}

func (rc *RecordsController[E, P]) Create() echo.HandlerFunc {
	return func(c echo.Context) error {
		var record E
		if err := rc.bind(c, &record); err != nil {
			return err
		}

		created, err := rc.app.CreateRecord.H(c.Request().Context(), application.CreateRecordRequest[E]{Record: record})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusCreated, created)
	}
}

func (rc *RecordsController[E, P]) Update() echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch P
		if err := rc.bind(c, &patch); err != nil {
			return err
		}

		updated, err := rc.app.UpdateRecord.H(c.Request().Context(), application.UpdateRecordRequest[P]{
			Key:   c.Param("key"),
			Patch: patch,
		})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, updated)
	}
}

func (rc *RecordsController[E, P]) Delete() echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := rc.app.DeleteRecord.H(c.Request().Context(), application.DeleteRecordRequest{Key: c.Param("key")})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, records)
	}
}

func (rc *RecordsController[E, P]) Reset() echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := rc.app.ResetRecords.H(c.Request().Context(), application.ResetRecordsRequest{})
		if err != nil {
			return httpError(err)
		}

		rc.logger.InfoContext(c.Request().Context(), "section reset", "section", rc.section)

		return c.JSON(http.StatusOK, records)
	}
}

func (rc *RecordsController[E, P]) Export() echo.HandlerFunc {
	return func(c echo.Context) error {
		csv, err := rc.app.ExportRecords.H(c.Request().Context(), application.ExportRecordsQuery{Query: c.QueryParam("q")})
		if err != nil {
			return httpError(err)
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rc.section+".csv"))

		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", csv)
	}
}

// Attachment serves the file stored in the attachment field of the record.
func (rc *RecordsController[E, P]) Attachment() echo.HandlerFunc {
	return func(c echo.Context) error {
		record, err := rc.app.GetRecord.H(c.Request().Context(), application.GetRecordQuery{Key: c.Param("key")})
		if err != nil {
			return httpError(err)
		}

		raw, err := json.Marshal(record)
		if err != nil {
			return httpError(err)
		}

		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return httpError(err)
		}

		dataURL, _ := fields[rc.attachmentField].(string)
		if dataURL == "" {
			return echo.NewHTTPError(http.StatusNotFound, "record has no "+rc.attachmentField)
		}

		_, data, err := attachment.Decode(dataURL)
		if err != nil {
			return httpError(err)
		}

		// the stored media type is client input, serve what the content actually is and never inline
		mime, ext := attachment.Detect(data)

		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", c.Param("key")+ext))
		c.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")

		return c.Blob(http.StatusOK, mime, data)
	}
}

// bind decodes a JSON body or a multipart form into v.
func (rc *RecordsController[E, P]) bind(c echo.Context, v any) error {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Bind(v); err != nil {
			return err //nolint:wrapcheck // echo returns a *HTTPError with status 400 or 415
		}

		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form: "+err.Error())
	}

	fields, err := formFields(form, reflect.TypeOf(v).Elem())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if files := form.File[rc.attachmentField]; rc.attachmentField != "" && len(files) > 0 {
		dataURL, err := attachment.FromFileHeader(files[0], attachment.DefaultLimit)
		if err != nil {
			return httpError(err)
		}

		fields[rc.attachmentField] = dataURL
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return httpError(err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

var errInvalidField = errors.New("invalid field")

// formFields converts the form values of all json fields of typ, so they can be decoded as JSON.
// Only fields present in the form are returned.
func formFields(form *multipart.Form, typ reflect.Type) (map[string]any, error) {
	fields := map[string]any{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			continue
		}

		kind := field.Type.Kind()
		if kind == reflect.Pointer {
			kind = field.Type.Elem().Kind()
		}

		switch kind { //nolint:exhaustive // records only have strings and ints
		case reflect.Int, reflect.Int64, reflect.Int32:
			n, err := strconv.Atoi(strings.TrimSpace(values[0]))
			if err != nil {
				return nil, fmt.Errorf("%w: %s is not a number", errInvalidField, name)
			}

			fields[name] = n
		default:
			fields[name] = values[0]
		}
	}

	return fields, nil
}

func intParam(c echo.Context, name string) (int, error) {
	value := c.QueryParam(name)
	if value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is not a number")
	}

	return n, nil
}

// httpError maps errors of the use cases to status codes.
func httpError(err error) error {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return echo.NewHTTPError(http.StatusBadRequest, validationErrs.Error()).SetInternal(err)
	case errors.Is(err, application.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, repository.ErrInvalidPatch),
		errors.Is(err, attachment.ErrTooLarge),
		errors.Is(err, attachment.ErrInvalidDataURL):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}
