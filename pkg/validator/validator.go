package validator

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// isEthAddress checks if a string is a valid hex-encoded Ethereum address.
func isEthAddress(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// isEthHash checks if a string is a valid 32-byte hex hash.
func isEthHash(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) == 2+2*common.HashLength && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s) != 2*common.HashLength {
		return false
	}
	for _, c := range []byte(s) {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// RegisterCustomValidators registers custom validation functions with the validator.
func RegisterCustomValidators(validate *validator.Validate) error {
	if err := validate.RegisterValidation("eth_addr", isEthAddress); err != nil {
		return err
	}
	return validate.RegisterValidation("eth_hash", isEthHash)
}
