package carryforwarderrors

import (
	"net/http"

	"github.com/LabelNest/NestHR/internal/shared/apperror"
)

var (
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeAlreadyProcessed,
		"carry-forward has already been run for this year",
		http.StatusConflict,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidFromYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid from_year",
		http.StatusBadRequest,
	)
)
