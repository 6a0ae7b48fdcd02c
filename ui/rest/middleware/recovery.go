package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	pkgError "github.com/ventia-app/ventia/pkg/error"
	"github.com/ventia-app/ventia/pkg/utils"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if err := recover(); err != nil {
				res := utils.ResponseData{
					Status:  500,
					Code:    "INTERNAL_SERVER_ERROR",
					Message: fmt.Sprintf("%v", err),
				}

				logrus.Errorf("[REST] Panic recuperado: %v", err)

				if known, ok := err.(pkgError.GenericError); ok {
					res.Status = known.StatusCode()
					res.Code = known.ErrCode()
					res.Message = known.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
