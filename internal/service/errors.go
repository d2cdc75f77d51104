package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Erros de domínio. Handlers mapeiam para status HTTP via errors.Is; serviços
// agregam contexto com fmt.Errorf("%w: ...") sem perder a identidade do erro.
var (
	ErrProdutoNaoEncontrado      = errors.New("produto não encontrado")
	ErrMovimentacaoNaoEncontrada = errors.New("movimentação não encontrada")
	ErrClienteNaoEncontrado      = errors.New("cliente não encontrado")
	ErrCategoriaNaoEncontrada    = errors.New("categoria não encontrada")
	ErrFornecedorNaoEncontrado   = errors.New("fornecedor não encontrado")
	ErrValidacao                 = errors.New("dados inválidos")
	// ErrEstoqueInsuficiente: quantidade pedida excede o estoque disponível,
	// seja ao adicionar no carrinho ou na revalidação do fechamento.
	ErrEstoqueInsuficiente = errors.New("estoque insuficiente")
	// ErrEstoqueNegativo: um delta (ou estorno) deixaria o estoque abaixo de
	// zero. A operação é recusada, nunca saturada em zero.
	ErrEstoqueNegativo       = errors.New("operação deixaria o estoque negativo")
	ErrLimiteCreditoExcedido = errors.New("limite de crédito do cliente excedido")
	ErrPagamentoInsuficiente = errors.New("valor recebido menor que o total da venda")
)

// ErroCommitParcial sinaliza que o fechamento de uma venda multi-item gravou
// alguns pares movimentação+estoque antes de falhar. Diferente de uma falha
// limpa: ProdutosConfirmados lista as linhas cujo estoque já foi debitado —
// os pares duráveis e, se a compensação da linha que falhou também falhar,
// essa linha meio-gravada — e o chamador precisa saber exatamente quais para
// reconciliar.
type ErroCommitParcial struct {
	VendaID             uuid.UUID
	ProdutosConfirmados []uuid.UUID
	Causa               error
}

func (e *ErroCommitParcial) Error() string {
	return fmt.Sprintf("venda %s em estado indeterminado: %d item(ns) já confirmados antes da falha: %v",
		e.VendaID, len(e.ProdutosConfirmados), e.Causa)
}

func (e *ErroCommitParcial) Unwrap() error { return e.Causa }
