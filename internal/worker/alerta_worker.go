package worker

// alerta_worker.go
// Consome QueueAlertaEstoque: envia por SMTP o aviso de produto no estoque
// mínimo. O envio passa pelo circuit breaker — com o servidor SMTP fora do
// ar os workers não ficam presos em timeouts consecutivos.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxTentativasAlerta = 3

// AlertaEstoquePayload é o envelope do job de alerta de estoque mínimo.
type AlertaEstoquePayload struct {
	ProdutoID     string `json:"produto_id"`
	ProdutoNome   string `json:"produto_nome"`
	ProdutoCodigo string `json:"produto_codigo"`
	EstoqueAtual  int    `json:"estoque_atual"`
	EstoqueMinimo int    `json:"estoque_minimo"`
}

// AlertaEstoqueWorker processa jobs de QueueAlertaEstoque.
type AlertaEstoqueWorker struct {
	mailer       *infra.Mailer
	cb           *infra.CircuitBreaker
	rdb          *redis.Client
	destinatario string
}

func NewAlertaEstoqueWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client, destinatario string) *AlertaEstoqueWorker {
	return &AlertaEstoqueWorker{mailer: mailer, cb: cb, rdb: rdb, destinatario: destinatario}
}

// Process envia o alerta com retry exponencial; depois do limite o job vai
// para a DLQ em vez de ser perdido em silêncio.
func (w *AlertaEstoqueWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AlertaEstoquePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: payload inválido")
		return
	}
	if w.destinatario == "" {
		log.Warn().Msg("alerta_worker: ALERTA_EMAIL_TO não configurado — descartando")
		return
	}

	err := withRetry(ctx, maxTentativasAlerta, func(attempt int) error {
		return w.cb.Execute(func() error {
			return w.mailer.SendAlertaEstoque(
				w.destinatario,
				payload.ProdutoNome,
				payload.ProdutoCodigo,
				payload.EstoqueAtual,
				payload.EstoqueMinimo,
			)
		})
	})
	if err != nil {
		log.Error().Err(err).Str("produto", payload.ProdutoCodigo).Msg("alerta_worker: envio falhou após todas as tentativas")
		SendToDLQ(ctx, w.rdb, QueueAlertaEstoque, "alerta_estoque", raw, err.Error(), maxTentativasAlerta)
		return
	}
	log.Info().Str("produto", payload.ProdutoCodigo).Str("para", w.destinatario).Msg("alerta_worker: alerta enviado")
}

// withRetry chama fn até maxAttempts vezes com backoff exponencial.
// Agenda: tentativa 1 = imediata, 2 = 1s, 3 = 2s.
// Devolve nil se alguma tentativa passou; o último erro caso contrário.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
