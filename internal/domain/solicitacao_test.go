package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restoque/internal/domain"
)

// TestPodeTransicionarSeparacao verifica a tabela de transições de separação.
func TestPodeTransicionarSeparacao(t *testing.T) {
	casos := []struct {
		de     domain.StatusSeparacao
		para   domain.StatusSeparacao
		valida bool
	}{
		{domain.SeparacaoAguardando, domain.SeparacaoSeparando, true},
		{domain.SeparacaoAguardando, domain.SeparacaoCancelado, true},
		{domain.SeparacaoAguardando, domain.SeparacaoSeparado, false},
		{domain.SeparacaoSeparando, domain.SeparacaoSeparado, true},
		{domain.SeparacaoSeparando, domain.SeparacaoEmFalta, true},
		// Cancelar a separação devolve o item à fila.
		{domain.SeparacaoSeparando, domain.SeparacaoAguardando, true},
		{domain.SeparacaoSeparando, domain.SeparacaoCancelado, false},
		// Estados terminais não saem mais.
		{domain.SeparacaoSeparado, domain.SeparacaoSeparando, false},
		{domain.SeparacaoEmFalta, domain.SeparacaoAguardando, false},
		{domain.SeparacaoCancelado, domain.SeparacaoSeparando, false},
	}

	for _, c := range casos {
		assert.Equal(t, c.valida, domain.PodeTransicionarSeparacao(c.de, c.para),
			"transição %s -> %s", c.de, c.para)
	}
}

// TestPodeTransicionarEntrega verifica a tabela de transições de entrega.
func TestPodeTransicionarEntrega(t *testing.T) {
	casos := []struct {
		de     domain.StatusEntrega
		para   domain.StatusEntrega
		valida bool
	}{
		{domain.EntregaAguardando, domain.EntregaEmEntrega, true},
		{domain.EntregaAguardando, domain.EntregaEntregue, false},
		{domain.EntregaEmEntrega, domain.EntregaEntregue, true},
		{domain.EntregaEmEntrega, domain.EntregaNaoEntregue, true},
		{domain.EntregaEntregue, domain.EntregaEmEntrega, false},
		{domain.EntregaNaoEntregue, domain.EntregaAguardando, false},
	}

	for _, c := range casos {
		assert.Equal(t, c.valida, domain.PodeTransicionarEntrega(c.de, c.para),
			"transição %s -> %s", c.de, c.para)
	}
}

// TestStatusSeparacao_Terminal verifica quais estados encerram a separação.
func TestStatusSeparacao_Terminal(t *testing.T) {
	assert.False(t, domain.SeparacaoAguardando.Terminal())
	assert.False(t, domain.SeparacaoSeparando.Terminal())
	assert.True(t, domain.SeparacaoSeparado.Terminal())
	assert.True(t, domain.SeparacaoEmFalta.Terminal())
	assert.True(t, domain.SeparacaoCancelado.Terminal())
}

// TestPrioridade_PrioridadeCalculada verifica os pesos de ordenação da fila.
func TestPrioridade_PrioridadeCalculada(t *testing.T) {
	assert.Equal(t, 10, domain.PrioridadeBaixa.PrioridadeCalculada())
	assert.Equal(t, 20, domain.PrioridadeNormal.PrioridadeCalculada())
	assert.Equal(t, 30, domain.PrioridadeAlta.PrioridadeCalculada())
	assert.Equal(t, 40, domain.PrioridadeUrgente.PrioridadeCalculada())
	assert.Equal(t, 0, domain.Prioridade("critica").PrioridadeCalculada())
}

// TestValida verifica a validação dos enumerados auxiliares.
func TestValida(t *testing.T) {
	assert.True(t, domain.PrioridadeAlta.Valida())
	assert.False(t, domain.Prioridade("").Valida())

	assert.True(t, domain.MovimentacaoEntrada.Valida())
	assert.True(t, domain.MovimentacaoSaida.Valida())
	assert.False(t, domain.TipoMovimentacao("transferencia").Valida())

	assert.True(t, domain.PeriodoManha.Valida())
	assert.False(t, domain.Periodo("madrugada").Valida())
}
