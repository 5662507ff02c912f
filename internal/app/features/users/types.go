// internal/app/features/users/types.go
package users

import "github.com/dalemusser/orgsite/internal/app/system/authz"

type createRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type rolesResponse struct {
	Roles []authz.Role `json:"roles"`
}
