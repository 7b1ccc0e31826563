package entitlementerrors

import (
	"net/http"

	"github.com/LabelNest/NestHR/internal/shared/apperror"
)

var (
	ErrEntitlementNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave entitlement not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrReleaseExceedsTotal = apperror.New(
		apperror.CodeConflict,
		"release would exceed total entitlement",
		http.StatusConflict,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
)
