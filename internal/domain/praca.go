package domain

import (
	"time"
)

// Praca representa um destino físico ou lógico dentro do restaurante
// (cozinha quente, confeitaria, bar...). As solicitações movem
// mercadorias de/para uma praça.
type Praca struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Descricao string    `json:"descricao"`
	Ativa     bool      `json:"ativa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
