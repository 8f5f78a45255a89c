// internal/app/features/users/types.go
package users

import "github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"

type loginResponse struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}
