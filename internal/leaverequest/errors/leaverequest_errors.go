package leaverequesterrors

import (
	"net/http"

	"github.com/LabelNest/NestHR/internal/shared/apperror"
)

var (
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
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidRange,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrZeroDayRange = apperror.New(
		apperror.CodeInvalidRange,
		"requested range contains no countable leave days",
		http.StatusBadRequest,
	)
	ErrCrossYearRange = apperror.New(
		apperror.CodeInvalidRange,
		"leave must not span calendar years, submit one request per year",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidType,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNotEligible = apperror.New(
		apperror.CodeInvalidType,
		"employee is not eligible for this leave type",
		http.StatusBadRequest,
	)
	ErrSpecialReasonRequired = apperror.New(
		apperror.CodeMissingReason,
		"this leave type requires a reason",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"invalid leave status transition",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when rejecting",
		http.StatusBadRequest,
	)
)
