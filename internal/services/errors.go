package services

import "errors"

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrInvalidPassword     = errors.New("contraseña inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrDuplicate           = errors.New("registro duplicado")
	ErrInvalidAmount       = errors.New("el monto debe ser mayor que cero")
	ErrExceedsRemaining    = errors.New("el monto excede el saldo pendiente")
	ErrInsufficientBalance = errors.New("saldo insuficiente para registrar el gasto")
	ErrInvalidMonth        = errors.New("mes inválido, use el formato YYYY-MM")
	ErrEventClosed         = errors.New("el evento está cerrado")
	ErrNoFloors            = errors.New("no hay pisos registrados")
)
