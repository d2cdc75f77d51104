package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertaEstoque = "jobs:alerta_estoque"
	QueueRecibo        = "jobs:recibo"
)

// Job é o envelope genérico de toda tarefa assíncrona.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processa o payload de um job já desempacotado do envelope.
type Handler func(ctx context.Context, payload json.RawMessage)

// Dispatcher enfileira jobs assíncronos em listas Redis.
// O pool de workers consome via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAlertaEstoque empurra um job de alerta de estoque mínimo.
func (d *Dispatcher) EnqueueAlertaEstoque(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueAlertaEstoque, "alerta_estoque", payload)
}

// EnqueueRecibo empurra um job de geração de recibo em PDF.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueRecibo, "recibo", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool sobe numWorkers goroutines consumindo as duas filas.
// handlers mapeia fila → processador; fila sem handler vai direto para a DLQ.
// Cada goroutine bloqueia em BRPOP — zero CPU quando ocioso.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("pool de workers iniciado com %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	queues := []string{QueueAlertaEstoque, QueueRecibo}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d encerrando", id)
			return
		default:
			// Pop bloqueante — espera até 5s e volta a checar o ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout ou contexto cancelado
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("falha ao desserializar job")
		return
	}

	handler, ok := handlers[queue]
	if !ok {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "nenhum handler registrado para a fila", 0)
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processando job")
	handler(ctx, job.Payload)
}
