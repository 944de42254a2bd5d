package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// Admin errors
var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminAlreadyExists = errors.New("admin already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidAdminData   = errors.New("invalid admin data")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Organization errors
var (
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrInvalidOrganizationData = errors.New("invalid organization data")
	ErrManagementCodeNotFound  = errors.New("management code not found")
	ErrManagementCodeInactive  = errors.New("management code is inactive")
	ErrManagementCodeExists    = errors.New("management code already exists")
	ErrInvalidManagementCode   = errors.New("invalid management code")
	ErrManagementCodeExhausted = errors.New("could not generate unique management code")
	ErrManagementScopeRequired = errors.New("management code scope required")
)

// Driver errors
var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDriverAlreadyExists = errors.New("driver already exists")
	ErrInvalidDriverData   = errors.New("invalid driver data")
)

// Vehicle errors
var (
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrVehicleAlreadyExists = errors.New("vehicle already exists")
	ErrInvalidLicensePlate  = errors.New("invalid license plate")
	ErrInvalidVehicleData   = errors.New("invalid vehicle data")
	ErrInvalidOdometer      = errors.New("invalid odometer value")
)

// Route errors
var (
	ErrRouteNotFound          = errors.New("route not found")
	ErrRouteAlreadyExists     = errors.New("route already exists")
	ErrInvalidRouteData       = errors.New("invalid route data")
	ErrDestinationNotFound    = errors.New("destination not found")
	ErrInvalidDestinationData = errors.New("invalid destination data")
)

// Rider errors
var (
	ErrRiderNotFound        = errors.New("rider not found")
	ErrInvalidRiderData     = errors.New("invalid rider data")
	ErrAddressNotFound      = errors.New("address not found")
	ErrInvalidAddressData   = errors.New("invalid address data")
	ErrInvalidAddressType   = errors.New("invalid address type")
	ErrPrimaryAddressNeeded = errors.New("exactly one primary address required")
	ErrLastAddress          = errors.New("rider must keep at least one address")
)

// Record errors
var (
	ErrRecordNotFound          = errors.New("record not found")
	ErrDetailNotFound          = errors.New("record detail not found")
	ErrRecordAlreadyExists     = errors.New("record already exists")
	ErrInvalidRecordKind       = errors.New("invalid record kind")
	ErrInvalidRecordData       = errors.New("invalid record data")
	ErrInvalidRecordField      = errors.New("invalid record field")
	ErrInvalidClockTime        = errors.New("invalid clock time, expected HH:MM")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrRecordClosed            = errors.New("record is cancelled")
	ErrCompletedFieldRequired  = errors.New("completed record keeps its start and end values")
	ErrRouteRequired           = errors.New("route is required for delivery records")
	ErrServiceDateOutOfRange   = errors.New("drivers may open records only for today or yesterday")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("driver session not found")
	ErrInvalidSession  = errors.New("invalid driver session data")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)
