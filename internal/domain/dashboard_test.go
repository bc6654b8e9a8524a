package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restoque/internal/domain"
)

// TestPercentual verifica o arredondamento do percentual de conclusão.
func TestPercentual(t *testing.T) {
	casos := []struct {
		parte    int
		total    int
		esperado int
	}{
		{0, 0, 0}, // conjunto vazio degrada para zero
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67}, // 66,67 arredonda para cima
		{1, 2, 50},
		{1, 8, 13}, // 12,5 arredonda para cima
		{3, 3, 100},
	}

	for _, c := range casos {
		assert.Equal(t, c.esperado, domain.Percentual(c.parte, c.total),
			"percentual de %d/%d", c.parte, c.total)
	}
}
