package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restoque/internal/domain"
)

// TestNotaAjuste verifica a composição da observação dos lançamentos
// criados pela aplicação de ajustes.
func TestNotaAjuste(t *testing.T) {
	casos := []struct {
		nome       string
		praca      string
		observacao string
		esperada   string
	}{
		{
			nome:     "sem observação de separação",
			praca:    "Cozinha Quente",
			esperada: "Ajuste da solicitação para a praça Cozinha Quente",
		},
		{
			nome:       "com observação de separação",
			praca:      "Confeitaria",
			observacao: "faltou uma caixa",
			esperada:   "Ajuste da solicitação para a praça Confeitaria: faltou uma caixa",
		},
	}

	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			nota := domain.NotaAjuste(c.praca, c.observacao)
			assert.Equal(t, c.esperada, nota)
			assert.Contains(t, nota, c.praca)
		})
	}
}
