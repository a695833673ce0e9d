package rabbit

import (
	"errors"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// isPermanentError reports whether a failed incident can never succeed on
// redelivery and must be dropped right away.
func isPermanentError(err error) bool {
	return oneOf(err, types.ErrValidation, types.ErrMalformedMsg, types.ErrUnknownMsgType)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
