package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto representa um item do catálogo de insumos do restaurante.
type Produto struct {
	ID            string          `json:"id"`
	Codigo        string          `json:"codigo"` // código único do produto (SKU)
	Nome          string          `json:"nome"`
	Descricao     string          `json:"descricao"`
	Unidade       string          `json:"unidade"` // un, kg, l, cx...
	Categoria     string          `json:"categoria"`
	EstoqueMinimo decimal.Decimal `json:"estoque_minimo"`
	Ativo         bool            `json:"ativo"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FiltroProduto define os parâmetros de busca e paginação do catálogo.
type FiltroProduto struct {
	Nome          string
	Categoria     string
	SomenteAtivos bool
	Page          int
	Limit         int
}
