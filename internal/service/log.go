package service

import (
	"errors"

	"go.uber.org/zap"
)

// logPersistence records storage failures.  Domain rejections are the
// caller's concern and are not logged here.
func logPersistence(log *zap.Logger, op string, err error) {
	if errors.Is(err, ErrPersistence) {
		log.Error(op, zap.Error(err))
	}
}
