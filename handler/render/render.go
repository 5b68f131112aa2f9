package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/sirupsen/logrus"
)

// H shortcut of a json object
type H map[string]interface{}

// ResponseErrorMessageAsHint expose internal error messages as hint
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Hint string `json:"hint,omitempty"`
}

func write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render: encode response")
	}
}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusOK, H{"data": v})
}

// Error render err; ledger error codes are client errors
func Error(w http.ResponseWriter, err error) {
	var code core.ErrorCode
	if errors.As(err, &code) {
		status := http.StatusBadRequest
		switch code {
		case core.ErrPoolNotFound, core.ErrPositionNotFound:
			status = http.StatusNotFound
		case core.ErrVersionConflict, core.ErrTraceConflict:
			status = http.StatusConflict
		}

		write(w, status, errorResponse{Code: int(code), Msg: code.String()})
		return
	}

	resp := errorResponse{Code: int(core.ErrUnknown), Msg: "internal error"}
	if ResponseErrorMessageAsHint {
		resp.Hint = err.Error()
	}

	write(w, http.StatusInternalServerError, resp)
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	write(w, http.StatusBadRequest, errorResponse{Code: -1, Msg: err.Error()})
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	write(w, http.StatusNotFound, errorResponse{Code: -1, Msg: err.Error()})
}
