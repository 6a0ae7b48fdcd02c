package rest

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/ventia-app/ventia/assistant/application"
	pkgError "github.com/ventia-app/ventia/pkg/error"
	"github.com/ventia-app/ventia/pkg/utils"
	"github.com/ventia-app/ventia/reports/usecase"
)

type Assistant struct {
	Orchestrator *application.Orchestrator
	Reports      usecase.IReportService
}

type queryRequest struct {
	Text string `json:"text"`
}

func (r queryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, 1000)),
	)
}

// queryResponse carries the resolved intent plus, when the intent called
// for data, the fetched report.
type queryResponse struct {
	Intent  any    `json:"intent"`
	Message string `json:"message"`
	Report  any    `json:"report,omitempty"`
}

func InitRestAssistant(app fiber.Router, orchestrator *application.Orchestrator, reports usecase.IReportService) Assistant {
	handler := Assistant{Orchestrator: orchestrator, Reports: reports}

	group := app.Group("/assistant")
	group.Post("/query", handler.Query)
	group.Get("/health", handler.Health)

	return handler
}

func (h *Assistant) Query(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		panic(pkgError.ValidationError(err.Error()))
	}

	resolution := h.Orchestrator.Resolve(c.UserContext(), req.Text)

	res := queryResponse{Message: resolution.Message}
	if resolution.Intent != nil {
		res.Intent = resolution.Intent
		if resolution.Intent.Accion != nil && h.Reports != nil {
			report, err := h.Reports.Fetch(*resolution.Intent)
			if err != nil {
				if _, ok := err.(pkgError.GenericError); ok {
					panic(err)
				}
				panic(pkgError.InternalServerError(err.Error()))
			}
			res.Report = report
			if res.Message == "" {
				res.Message = report.Message
			}
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Consulta resuelta",
		Results: res,
	})
}

func (h *Assistant) Health(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Assistant ready",
	})
}
