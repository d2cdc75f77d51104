package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Implementação genérica do padrão (Closed → Open → Half-Open). Protege o
// processo contra um servidor SMTP fora do ar: alerta de estoque é best-effort
// e não pode segurar workers bloqueados em timeouts consecutivos.
//
// Estados:
//   - Closed:    operação normal, chamadas passam
//   - Open:      toda chamada falha imediatamente (fast-fail)
//   - Half-Open: uma chamada de sonda passa para testar a recuperação

// CBState é o estado corrente do circuit breaker.
type CBState int

const (
	CBClosed   CBState = iota // normal — chamadas fluem
	CBOpen                    // desarmado — fast-fail
	CBHalfOpen                // sondando — uma chamada passa
)

// String devolve o nome legível do estado (health endpoint / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen é devolvido quando Execute é chamado com o CB aberto.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig agrupa os parâmetros ajustáveis.
type CircuitBreakerConfig struct {
	FailureThreshold int           // falhas consecutivas para abrir (default: 5)
	SuccessThreshold int           // sucessos em half-open para fechar (default: 2)
	OpenTimeout      time.Duration // tempo aberto antes de sondar (default: 60s)
}

// DefaultCBConfig devolve defaults sensatos para o CB do SMTP.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker implementa o padrão com transições thread-safe.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CBState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker cria um CB no estado Closed.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		state:            CBClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State devolve o estado corrente (seguro para leituras concorrentes).
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	// Transição automática open → half-open quando o timeout passou
	if cb.state == CBOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successCount = 0
	}
	return cb.state
}

// Execute roda fn através do circuit breaker.
// Devolve ErrCircuitOpen imediatamente se o CB está aberto.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	state := cb.State()

	if state == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// onFailure registra uma falha (chamar sob lock).
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = CBOpen
			cb.successCount = 0
		}
	case CBHalfOpen:
		// Sonda falhou — volta para open
		cb.state = CBOpen
		cb.failureCount = 0
	}
}

// onSuccess registra um sucesso (chamar sob lock).
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failureCount = 0
	case CBHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = CBClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}
