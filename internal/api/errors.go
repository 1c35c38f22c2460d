package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/OshiSharma1222/starquik/internal/stellar"
)

// ErrorResponse is the body of every failed request. Only Error is
// guaranteed; the other fields are set when the failure carries them.
type ErrorResponse struct {
	Error       string               `json:"error"`
	Kind        stellar.Kind         `json:"kind,omitempty"`
	ResultCodes *stellar.ResultCodes `json:"result_codes,omitempty"`
	Extras      map[string]any       `json:"extras,omitempty"`
}

func newErrorResponse(err error) ErrorResponse {
	res := ErrorResponse{Error: err.Error(), Kind: stellar.KindOf(err)}
	var serr *stellar.Error
	if errors.As(err, &serr) {
		res.ResultCodes = serr.ResultCodes
		res.Extras = serr.Extras
	}
	return res
}

// errorHandler answers application errors with 400. Router errors such as
// unknown routes keep their own status.
func errorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	log := logger.WithField("pkg", "api")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusBadRequest
		body := newErrorResponse(err)

		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			status = herr.Code
			body = ErrorResponse{Error: http.StatusText(herr.Code)}
			if msg, ok := herr.Message.(string); ok {
				body.Error = msg
			}
		} else {
			log.WithError(err).WithFields(logrus.Fields{
				"path": c.Path(),
				"kind": body.Kind,
			}).Warn("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
