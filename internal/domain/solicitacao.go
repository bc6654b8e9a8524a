package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusSolicitacao representa o estado agregado de uma solicitação.
type StatusSolicitacao string

const (
	SolicitacaoPendente   StatusSolicitacao = "pendente"
	SolicitacaoEntregue   StatusSolicitacao = "entregue"
	SolicitacaoConfirmada StatusSolicitacao = "confirmada"
	SolicitacaoCancelada  StatusSolicitacao = "cancelada"
)

// StatusSeparacao representa o estado de separação de um item.
type StatusSeparacao string

const (
	SeparacaoAguardando StatusSeparacao = "aguardando"
	SeparacaoSeparando  StatusSeparacao = "separando"
	SeparacaoSeparado   StatusSeparacao = "separado"
	SeparacaoEmFalta    StatusSeparacao = "em_falta"
	SeparacaoCancelado  StatusSeparacao = "cancelado"
)

// StatusEntrega representa o estado de entrega de um item já separado.
type StatusEntrega string

const (
	EntregaAguardando  StatusEntrega = "aguardando"
	EntregaEmEntrega   StatusEntrega = "em_entrega"
	EntregaEntregue    StatusEntrega = "entregue"
	EntregaNaoEntregue StatusEntrega = "nao_entregue"
)

// Prioridade de atendimento declarada pelo solicitante.
type Prioridade string

const (
	PrioridadeBaixa   Prioridade = "baixa"
	PrioridadeNormal  Prioridade = "normal"
	PrioridadeAlta    Prioridade = "alta"
	PrioridadeUrgente Prioridade = "urgente"
)

// TipoMovimentacao indica a direção do movimento de estoque gerado pela solicitação.
type TipoMovimentacao string

const (
	MovimentacaoEntrada TipoMovimentacao = "entrada"
	MovimentacaoSaida   TipoMovimentacao = "saida"
)

// Periodo é a janela de entrega desejada.
type Periodo string

const (
	PeriodoManha Periodo = "manha"
	PeriodoTarde Periodo = "tarde"
	PeriodoNoite Periodo = "noite"
)

// --- Máquina de estados ---
// As transições válidas são declaradas em tabelas em vez de comparações
// espalhadas pelos serviços. Toda operação consulta a tabela antes de
// emitir o UPDATE condicional correspondente.

var transicoesSeparacao = map[StatusSeparacao][]StatusSeparacao{
	SeparacaoAguardando: {SeparacaoSeparando, SeparacaoCancelado},
	SeparacaoSeparando:  {SeparacaoSeparado, SeparacaoEmFalta, SeparacaoAguardando},
	SeparacaoSeparado:   {},
	SeparacaoEmFalta:    {},
	SeparacaoCancelado:  {},
}

var transicoesEntrega = map[StatusEntrega][]StatusEntrega{
	EntregaAguardando:  {EntregaEmEntrega},
	EntregaEmEntrega:   {EntregaEntregue, EntregaNaoEntregue},
	EntregaEntregue:    {},
	EntregaNaoEntregue: {},
}

// PodeTransicionarSeparacao informa se a transição de separação é válida.
func PodeTransicionarSeparacao(de, para StatusSeparacao) bool {
	for _, s := range transicoesSeparacao[de] {
		if s == para {
			return true
		}
	}
	return false
}

// PodeTransicionarEntrega informa se a transição de entrega é válida.
func PodeTransicionarEntrega(de, para StatusEntrega) bool {
	for _, s := range transicoesEntrega[de] {
		if s == para {
			return true
		}
	}
	return false
}

// Terminal informa se o status de separação é terminal (não sai mais dele).
func (s StatusSeparacao) Terminal() bool {
	return s == SeparacaoSeparado || s == SeparacaoEmFalta || s == SeparacaoCancelado
}

// PrioridadeCalculada converte a prioridade declarada no peso numérico
// usado na ordenação das filas de trabalho.
func (p Prioridade) PrioridadeCalculada() int {
	switch p {
	case PrioridadeBaixa:
		return 10
	case PrioridadeNormal:
		return 20
	case PrioridadeAlta:
		return 30
	case PrioridadeUrgente:
		return 40
	}
	return 0
}

// Valida informa se o valor é uma prioridade conhecida.
func (p Prioridade) Valida() bool {
	return p.PrioridadeCalculada() != 0
}

// Valida informa se o valor é um tipo de movimentação conhecido.
func (t TipoMovimentacao) Valida() bool {
	return t == MovimentacaoEntrada || t == MovimentacaoSaida
}

// Valida informa se o valor é um período conhecido.
func (p Periodo) Valida() bool {
	return p == PeriodoManha || p == PeriodoTarde || p == PeriodoNoite
}

// Solicitacao representa um pedido de movimentação de mercadorias para
// uma praça. O status agregado é derivado dos itens: quando todos os
// itens atingem um estado terminal de separação a solicitação avança
// para "entregue"; a aplicação dos ajustes de estoque a leva para
// "confirmada".
type Solicitacao struct {
	ID                   string            `json:"id"`
	Solicitante          string            `json:"solicitante"`
	PracaID              string            `json:"praca_id"`
	Status               StatusSolicitacao `json:"status"`
	Prioridade           Prioridade        `json:"prioridade"`
	PrioridadeCalculada  int               `json:"prioridade_calculada"`
	Observacoes          string            `json:"observacoes"`
	TipoMovimentacao     TipoMovimentacao  `json:"tipo_movimentacao"`
	DataEntrega          time.Time         `json:"data_entrega"`
	Periodo              Periodo           `json:"periodo"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`

	Itens []ItemSolicitacao `json:"itens,omitempty"`
}

// ItemSolicitacao é uma linha de produto dentro de uma solicitação.
// QuantidadeSeparada só tem significado quando StatusSeparacao é
// "separado"; até lá permanece nula.
type ItemSolicitacao struct {
	ID                    string           `json:"id"`
	SolicitacaoID         string           `json:"solicitacao_id"`
	ProdutoID             string           `json:"produto_id"`
	QuantidadeSolicitada  decimal.Decimal  `json:"quantidade_solicitada"`
	QuantidadeSeparada    *decimal.Decimal `json:"quantidade_separada,omitempty"`
	StatusSeparacao       StatusSeparacao  `json:"status_separacao"`
	SeparadoPor           string           `json:"separado_por,omitempty"`
	InicioSeparacao       *time.Time       `json:"inicio_separacao,omitempty"`
	FimSeparacao          *time.Time       `json:"fim_separacao,omitempty"`
	ObservacoesSeparacao  string           `json:"observacoes_separacao,omitempty"`
	StatusEntrega         StatusEntrega    `json:"status_entrega"`
	EntreguePor           string           `json:"entregue_por,omitempty"`
	DataEntregaItem       *time.Time       `json:"data_entrega_item,omitempty"`
	ObservacoesEntrega    string           `json:"observacoes_entrega,omitempty"`
}

// FiltroSolicitacao define os parâmetros de busca e paginação das listas
// de trabalho. A ordenação é fixa: prioridade calculada decrescente e,
// dentro da mesma prioridade, criação mais antiga primeiro.
type FiltroSolicitacao struct {
	Status  StatusSolicitacao
	PracaID string
	Tipo    TipoMovimentacao
	Page    int
	Limit   int
}
