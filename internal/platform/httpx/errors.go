package httpx

import (
	"errors"
	"net/http"

	acctshared "github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// RespondError maps ledger domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, acctshared.ErrAccountNotFound),
		errors.Is(err, acctshared.ErrJournalNotFound),
		errors.Is(err, acctshared.ErrPeriodNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, acctshared.ErrAccountCodeTaken),
		errors.Is(err, acctshared.ErrYearExists),
		errors.Is(err, acctshared.ErrSourceAlreadyLinked),
		errors.Is(err, acctshared.ErrAlreadyPosted):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, acctshared.ErrPeriodClosed),
		errors.Is(err, acctshared.ErrNoOpenPeriod),
		errors.Is(err, acctshared.ErrSystemAccount),
		errors.Is(err, acctshared.ErrAccountNotPostable),
		errors.Is(err, acctshared.ErrNotPosted):
		Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, acctshared.ErrUnbalanced),
		errors.Is(err, acctshared.ErrTooFewLines),
		errors.Is(err, acctshared.ErrParentCycle):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
