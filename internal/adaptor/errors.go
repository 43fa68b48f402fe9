package adaptor

import (
	"errors"
	"net/http"

	"screenbook/pkg/apperr"
	"screenbook/pkg/utils"

	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy onto HTTP status codes. Typed
// errors surface their message (and details, e.g. the taken seat list on a
// conflict); anything untyped is internal and the cause stays in the log.
func respondError(w http.ResponseWriter, log *zap.Logger, err error, action string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindNotFound:
			utils.ResponseNotFound(w, appErr.Message)
			return
		case apperr.KindBadRequest:
			utils.ResponseBadRequest(w, appErr.Message)
			return
		case apperr.KindConflict:
			utils.ResponseJSON(w, http.StatusConflict, appErr.Message, appErr.Details)
			return
		}
	}

	log.Error("Request failed", zap.String("action", action), zap.Error(err))
	utils.ResponseInternalError(w, "internal server error")
}
