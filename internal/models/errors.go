package models

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateSerial  = errors.New("serial number already issued")
	ErrDuplicatePayment = errors.New("payment already recorded")
	ErrAlreadyUsed      = errors.New("ticket already used")
)
