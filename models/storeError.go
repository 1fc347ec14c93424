package models

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"gorm.io/gorm"
)

// storeError folds database failures into the shared taxonomy: a missing row
// is the permanent ErrorRecordNotFound, connectivity and timeout failures are
// the transient ErrorStoreUnavailable, anything else passes through.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorRecordNotFound
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", utils.ErrorStoreUnavailable, err)
	}
	return err
}
