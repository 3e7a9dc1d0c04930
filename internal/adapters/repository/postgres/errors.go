package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
	codeInvalidPassword       = "28P01"
	codeInvalidAuthorization  = "28000"
)

// translate maps driver errors onto domain store errors so services can
// branch with errors.Is. Unrecognized errors are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
		case pqErr.Code == codeInsufficientPrivilege,
			pqErr.Code == codeInvalidPassword,
			pqErr.Code == codeInvalidAuthorization:
			return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		case pqErr.Code.Class() == "08", // connection exception
			pqErr.Code.Class() == "53", // insufficient resources
			pqErr.Code.Class() == "57": // operator intervention
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}
