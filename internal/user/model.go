package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperador Role = "OPERADOR"
	RoleCliente  Role = "CLIENTE"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperador, RoleCliente:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
