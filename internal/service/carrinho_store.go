package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CarrinhoStore guarda carrinhos por sessão de PDV. A implementação de
// produção usa Redis com TTL (sessão abandonada expira sozinha); os testes
// unitários usam o store em memória.
type CarrinhoStore interface {
	Obter(ctx context.Context, sessaoID string) (*Carrinho, error)
	Salvar(ctx context.Context, sessaoID string, c *Carrinho) error
	Remover(ctx context.Context, sessaoID string) error
}

// ErrSessaoNaoEncontrada: a sessão de PDV expirou ou nunca existiu.
var ErrSessaoNaoEncontrada = errors.New("sessão de PDV não encontrada")

// ─── Redis ───────────────────────────────────────────────────────────────────

const (
	carrinhoKeyPrefix = "pdv:carrinho:"
	carrinhoTTLPadrao = 4 * time.Hour
)

type redisCarrinhoStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCarrinhoStore(rdb *redis.Client, ttl time.Duration) CarrinhoStore {
	if ttl <= 0 {
		ttl = carrinhoTTLPadrao
	}
	return &redisCarrinhoStore{rdb: rdb, ttl: ttl}
}

func (s *redisCarrinhoStore) Obter(ctx context.Context, sessaoID string) (*Carrinho, error) {
	raw, err := s.rdb.Get(ctx, carrinhoKeyPrefix+sessaoID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessaoNaoEncontrada
	}
	if err != nil {
		return nil, fmt.Errorf("carrinho store: %w", err)
	}
	var c Carrinho
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("carrinho store: decode: %w", err)
	}
	return &c, nil
}

func (s *redisCarrinhoStore) Salvar(ctx context.Context, sessaoID string, c *Carrinho) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("carrinho store: encode: %w", err)
	}
	return s.rdb.Set(ctx, carrinhoKeyPrefix+sessaoID, data, s.ttl).Err()
}

func (s *redisCarrinhoStore) Remover(ctx context.Context, sessaoID string) error {
	return s.rdb.Del(ctx, carrinhoKeyPrefix+sessaoID).Err()
}

// ─── Memória (testes) ────────────────────────────────────────────────────────

type memCarrinhoStore struct {
	mu        sync.Mutex
	carrinhos map[string]*Carrinho
}

func NewMemCarrinhoStore() CarrinhoStore {
	return &memCarrinhoStore{carrinhos: make(map[string]*Carrinho)}
}

func (s *memCarrinhoStore) Obter(_ context.Context, sessaoID string) (*Carrinho, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carrinhos[sessaoID]
	if !ok {
		return nil, ErrSessaoNaoEncontrada
	}
	copia := *c
	copia.Itens = append([]ItemCarrinho(nil), c.Itens...)
	return &copia, nil
}

func (s *memCarrinhoStore) Salvar(_ context.Context, sessaoID string, c *Carrinho) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copia := *c
	copia.Itens = append([]ItemCarrinho(nil), c.Itens...)
	s.carrinhos[sessaoID] = &copia
	return nil
}

func (s *memCarrinhoStore) Remover(_ context.Context, sessaoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carrinhos, sessaoID)
	return nil
}
