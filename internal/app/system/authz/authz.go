// internal/app/system/authz/authz.go
package authz

import (
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
)

// Require returns an InsufficientPermission error unless actual meets min.
// Mutating handlers call this after the session has been verified
// server-side; the role hint cookie is never an input here.
func Require(actual, min Role) error {
	if !actual.Valid() {
		return apierr.Forbidden("Insufficient permission: unrecognized role")
	}
	if !MeetsMinimum(actual, min) {
		return apierr.Forbidden("Insufficient permission: requires " + min.String() + " or higher")
	}
	return nil
}

// RequireExact returns an InsufficientPermission error unless actual is one
// of the listed roles. Used for exact-role rules such as role changes.
func RequireExact(actual Role, allowed ...Role) error {
	for _, r := range allowed {
		if actual == r {
			return nil
		}
	}
	return apierr.Forbidden("Insufficient permission for this action")
}
