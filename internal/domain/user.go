package domain

import "time"

// User representa a entidade do usuário no sistema. O núcleo do fluxo
// de trabalho nunca consulta esta entidade: ele recebe o id do usuário
// já resolvido pelo middleware de autenticação.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleEstoquista UserRole = "estoquista"
	RoleCozinha    UserRole = "cozinha"
)

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	Nome     string `json:"nome" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
