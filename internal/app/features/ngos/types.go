// internal/app/features/ngos/types.go
package ngos

import "github.com/sahilshivekar/team23-ngo-backend/internal/domain/models"

// loginRequest is the NGO login form. Either identifier may be used.
type loginRequest struct {
	RegistrationNumber string
	Email              string
	Password           string
}

func (l *loginRequest) fromFields(fields map[string]string) {
	l.RegistrationNumber = trimmed(fields, "registrationNumber")
	l.Email = trimmed(fields, "email")
	l.Password = fields["password"]
}

// account is the identifier throttled and audited for this attempt.
func (l loginRequest) account() string {
	if l.RegistrationNumber != "" {
		return l.RegistrationNumber
	}
	return l.Email
}

type loginResponse struct {
	NGO         models.NGO `json:"ngo"`
	AccessToken string     `json:"accessToken"`
}
