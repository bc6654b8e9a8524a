package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovimentacaoEstoque é um lançamento imutável no razão de estoque.
// Criada em lote quando os ajustes de uma solicitação são aplicados, ou
// individualmente por movimentações manuais; nunca alterada ou removida
// pelo fluxo (razão append-only).
type MovimentacaoEstoque struct {
	ID            string           `json:"id"`
	ProdutoID     string           `json:"produto_id"`
	Tipo          TipoMovimentacao `json:"tipo"`
	Quantidade    decimal.Decimal  `json:"quantidade"`
	SolicitacaoID *string          `json:"solicitacao_id,omitempty"`
	Observacoes   string           `json:"observacoes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NotaAjuste compõe a observação de um lançamento criado pela aplicação
// de ajustes: sempre cita a praça de destino e preserva a observação
// feita durante a separação do item, quando houver.
func NotaAjuste(nomePraca, observacaoSeparacao string) string {
	nota := "Ajuste da solicitação para a praça " + nomePraca
	if observacaoSeparacao != "" {
		nota += ": " + observacaoSeparacao
	}
	return nota
}

// FiltroMovimentacao define os parâmetros de busca do razão.
type FiltroMovimentacao struct {
	ProdutoID string
	Tipo      TipoMovimentacao
	Inicio    *time.Time
	Fim       *time.Time
	Page      int
	Limit     int
}
