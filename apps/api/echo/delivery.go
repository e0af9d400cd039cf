package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
)

// upload form fields, by order of preference
var uploadFields = []string{"file", "archivo"}

type (
	deliveryApi struct {
		svc delivery.Service
	}

	// createDeliveryRequest is bound from either a JSON or a multipart body.
	createDeliveryRequest struct {
		Owner     string `json:"owner" form:"owner"`
		Matricula string `json:"matricula" form:"matricula"`
		Subject   string `json:"subject" form:"subject"`
		Task      string `json:"task" form:"task"`
		DueDate   string `json:"dueDate" form:"dueDate"`
		FileURL   string `json:"fileUrl" form:"fileUrl"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

func registerDeliveryAPI(g *echo.Group, svc delivery.Service) {
	api := deliveryApi{svc: svc}

	dg := g.Group("/entregas")
	dg.GET("", api.query)
	dg.POST("", api.create)
	dg.PUT("/:id", api.updateStatus)
	dg.DELETE("/:id", api.destroy)
}

// updateStatusRequest also accepts the legacy "estado" key and its values.
type updateStatusRequest struct {
	Status delivery.Status `json:"status"`
	Estado string          `json:"estado"`
}

var legacyStatuses = map[string]delivery.Status{
	"ENVIADO":   delivery.StatusSubmitted,
	"REVISADO":  delivery.StatusUnderReview,
	"APROBADO":  delivery.StatusApproved,
	"RECHAZADO": delivery.StatusRejected,
	"ENTREGADO": delivery.StatusDelivered,
}

func legacyStatus(estado string) delivery.Status {
	if st, ok := legacyStatuses[estado]; ok {
		return st
	}
	return delivery.Status(estado)
}

// Handlers

func (api *deliveryApi) query(ctx echo.Context) error {
	filter := delivery.QueryFilter{
		Owner: firstNonEmpty(ctx.QueryParam("owner"), ctx.QueryParam("matricula")),
	}

	deliveries, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying deliveries")
	}
	return ctx.JSON(http.StatusOK, deliveries)
}

func (api *deliveryApi) create(ctx echo.Context) error {
	var data createDeliveryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to createDeliveryRequest")
	}

	upload, closeUpload, err := getUpload(ctx)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}
	defer closeUpload()

	d, err := api.svc.Create(ctx.Request().Context(), delivery.NewDelivery{
		Owner:   firstNonEmpty(data.Owner, data.Matricula),
		Subject: data.Subject,
		Task:    data.Task,
		DueDate: data.DueDate,
		FileURL: data.FileURL,
	}, upload, ctx.Scheme()+"://"+ctx.Request().Host)
	if err != nil {
		return errors.Wrap(err, "creating delivery")
	}
	return ctx.JSON(http.StatusCreated, d)
}

// getUpload returns the file sent along a multipart request, if any.
func getUpload(ctx echo.Context) (*core.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}

	for _, field := range uploadFields {
		fh, err := ctx.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			return nil, noop, err
		}

		f, err := fh.Open()
		if err != nil {
			return nil, noop, err
		}
		upload := &core.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		}
		return upload, func() { _ = f.Close() }, nil
	}
	return nil, noop, nil
}

func (api *deliveryApi) updateStatus(ctx echo.Context) error {
	var data updateStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to updateStatusRequest")
	}

	us := delivery.UpdateStatus{Status: data.Status}
	if us.Status == "" {
		us.Status = legacyStatus(data.Estado)
	}
	d, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), us)
	if err != nil {
		return errors.Wrap(err, "updating delivery status")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *deliveryApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting delivery")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "delivery deleted successfully"})
}
