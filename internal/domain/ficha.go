package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FichaTecnica é a receita padronizada de uma preparação: cabeçalho com
// rendimento e a lista de ingredientes referenciando o catálogo.
type FichaTecnica struct {
	ID                 string          `json:"id"`
	Nome               string          `json:"nome"`
	Descricao          string          `json:"descricao"`
	Rendimento         decimal.Decimal `json:"rendimento"`
	UnidadeRendimento  string          `json:"unidade_rendimento"` // porções, kg, l...
	Ativa              bool            `json:"ativa"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Ingredientes []IngredienteFicha `json:"ingredientes,omitempty"`
}

// IngredienteFicha é uma linha de ingrediente de uma ficha técnica.
type IngredienteFicha struct {
	ID          string          `json:"id"`
	FichaID     string          `json:"ficha_id"`
	ProdutoID   string          `json:"produto_id"`
	Quantidade  decimal.Decimal `json:"quantidade"`
	Observacoes string          `json:"observacoes,omitempty"`
}
