package domain

// ResumoDashboard agrega os números exibidos no painel. São leituras
// informativas, não transacionais: em caso de falha os valores degradam
// para zero em vez de bloquear a página.
type ResumoDashboard struct {
	SolicitacoesPendentes int `json:"solicitacoes_pendentes"`
	ItensEmSeparacao      int `json:"itens_em_separacao"`
	ConcluidasHoje        int `json:"concluidas_hoje"`
	PercentualGeral       int `json:"percentual_geral"` // % de itens terminais sobre o total
}

// Percentual calcula parte/total como percentual inteiro, arredondado
// para o mais próximo; 0 para conjunto vazio.
func Percentual(parte, total int) int {
	if total == 0 {
		return 0
	}
	return (parte*100 + total/2) / total
}
