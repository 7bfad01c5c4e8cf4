// Package overriding mantém os ajustes manuais dos gerentes sobre as previsões do modelo.
//
// Cada ajuste vale por um período limitado. O vencimento é avaliado na leitura: a primeira
// consulta que observa now >= expires_at remove o ajuste e devolve a previsão original.
// Sweep remove, sob demanda, ajustes vencidos que nunca voltaram a ser consultados.
package overriding

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

// ResolveStatus descreve o que Resolve encontrou para a chave
type ResolveStatus string

const (
	StatusNone    ResolveStatus = "none"
	StatusApplied ResolveStatus = "applied"
	StatusExpired ResolveStatus = "expired"
)

type Option func(*Ledger)

// WithClock substitui time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithExpiryHook registra uma função chamada, fora do lock, para cada ajuste removido por Resolve
func WithExpiryHook(hook func(domain.OverrideEntry)) Option {
	return func(l *Ledger) {
		l.onExpire = hook
	}
}

// Ledger guarda no máximo um ajuste por (produto, loja). Seguro para uso concorrente.
type Ledger struct {
	mu       sync.Mutex
	entries  map[domain.OverrideKey]domain.OverrideEntry
	now      func() time.Time
	onExpire func(domain.OverrideEntry)
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		entries: make(map[domain.OverrideKey]domain.OverrideEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetOverride cria ou substitui o ajuste da chave com validade a partir de agora
func (l *Ledger) SetOverride(productID, locationID string, multiplier float64, validFor time.Duration, reason string) (domain.OverrideEntry, error) {
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return domain.OverrideEntry{}, newInvalidOverrideError(productID, locationID,
			fmt.Sprintf("multiplicador deve ser positivo, recebido %v", multiplier))
	}
	if validFor <= 0 {
		return domain.OverrideEntry{}, newInvalidOverrideError(productID, locationID,
			fmt.Sprintf("validade deve ser positiva, recebida %s", validFor))
	}
	if reason == "" {
		reason = domain.DefaultOverrideReason
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry := domain.OverrideEntry{
		ProductID:  productID,
		LocationID: locationID,
		Multiplier: multiplier,
		Reason:     reason,
		CreatedAt:  now,
		ExpiresAt:  now.Add(validFor),
	}
	l.entries[entry.Key()] = entry

	return entry, nil
}

// Resolve devolve a previsão ajustada. Nunca falha: chave ausente devolve base.
func (l *Ledger) Resolve(productID, locationID string, base float64) float64 {
	prediction, _ := l.ResolveWithStatus(productID, locationID, base)
	return prediction
}

func (l *Ledger) ResolveWithStatus(productID, locationID string, base float64) (float64, ResolveStatus) {
	key := domain.OverrideKey{ProductID: productID, LocationID: locationID}

	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		return base, StatusNone
	}

	if !entry.IsExpired(l.now()) {
		l.mu.Unlock()
		return base * entry.Multiplier, StatusApplied
	}

	delete(l.entries, key)
	l.mu.Unlock()

	if l.onExpire != nil {
		l.onExpire(entry)
	}

	return base, StatusExpired
}

// Sweep remove todos os ajustes vencidos e os devolve ordenados por chave
func (l *Ledger) Sweep() []domain.OverrideEntry {
	l.mu.Lock()
	now := l.now()
	removed := make([]domain.OverrideEntry, 0)
	for key, entry := range l.entries {
		if entry.IsExpired(now) {
			removed = append(removed, entry)
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()

	sortEntries(removed)
	return removed
}

// Active devolve uma cópia dos ajustes ainda válidos, sem remover os vencidos
func (l *Ledger) Active() []domain.OverrideEntry {
	l.mu.Lock()
	now := l.now()
	active := make([]domain.OverrideEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		if !entry.IsExpired(now) {
			active = append(active, entry)
		}
	}
	l.mu.Unlock()

	sortEntries(active)
	return active
}

// Len conta as entradas guardadas, vencidas ou não
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func sortEntries(entries []domain.OverrideEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].LocationID < entries[j].LocationID
	})
}
