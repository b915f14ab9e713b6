package orders

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"cedra_storefront/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultPollInterval  = 30 * time.Second
	// DefaultIdleIntervals : un flux sans lecture pendant ce nombre d'intervalles s'arrête
	DefaultIdleIntervals = 10
)

// Lister est la partie lecture de Persistence utilisée par Feed
type Lister interface {
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

// Stats est le résumé affiché sur le tableau de bord
type Stats struct {
	TotalOrders int                        `json:"totalOrders"`
	Revenue     decimal.Decimal            `json:"revenue"`
	ByStatus    map[models.OrderStatus]int `json:"byStatus"`
}

type Snapshot struct {
	Seq       uint64         `json:"seq"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Orders    []models.Order `json:"orders"`
	Stats     Stats          `json:"stats"`
}

// Feed interroge l'historique à intervalle fixe. Chaque requête reçoit un
// numéro croissant ; une réponse plus ancienne que la dernière appliquée est
// ignorée. Les requêtes en cours ne sont pas annulées.
type Feed struct {
	lister    Lister
	filter    models.OrderFilter
	interval  time.Duration
	idleAfter time.Duration

	issued   atomic.Uint64
	lastRead atomic.Int64

	mu       sync.RWMutex
	snapshot Snapshot
}

type FeedOption func(*Feed)

// WithIdleStop arrête Run après n intervalles sans appel à Snapshot
func WithIdleStop(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.idleAfter = time.Duration(n) * f.interval
		}
	}
}

func NewFeed(lister Lister, filter models.OrderFilter, interval time.Duration, opts ...FeedOption) *Feed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	f := &Feed{
		lister:   lister,
		filter:   filter,
		interval: interval,
		snapshot: Snapshot{Orders: []models.Order{}, Stats: Summarize(nil)},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.lastRead.Store(time.Now().UnixNano())
	return f
}

// Run interroge immédiatement puis à chaque tick, jusqu'à l'annulation de ctx
// ou, avec WithIdleStop, jusqu'à ce que plus personne ne lise le flux
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	go f.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f.idle() {
				log.Printf("🛑 Tableau de bord %+v inactif, arrêt du flux", f.filter)
				return
			}
			go f.Poll(ctx)
		}
	}
}

func (f *Feed) idle() bool {
	if f.idleAfter <= 0 {
		return false
	}
	return time.Since(time.Unix(0, f.lastRead.Load())) >= f.idleAfter
}

// Poll lance une requête ; true si sa réponse a été appliquée
func (f *Feed) Poll(ctx context.Context) bool {
	seq := f.issued.Add(1)

	orders, err := f.lister.List(ctx, f.filter)
	if err != nil {
		log.Printf("⚠️ Tableau de bord: lecture #%d échouée: %v", seq, err)
		return false
	}
	return f.apply(seq, orders)
}

func (f *Feed) apply(seq uint64, orders []models.Order) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if seq <= f.snapshot.Seq {
		log.Printf("⚠️ Tableau de bord: réponse #%d ignorée (déjà #%d)", seq, f.snapshot.Seq)
		return false
	}
	f.snapshot = Snapshot{
		Seq:       seq,
		FetchedAt: time.Now().UTC(),
		Orders:    orders,
		Stats:     Summarize(orders),
	}
	return true
}

func (f *Feed) Snapshot() Snapshot {
	f.lastRead.Store(time.Now().UnixNano())
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot
}

// Summarize compte les commandes par statut ; le chiffre d'affaires exclut
// les commandes annulées ou retournées
func Summarize(orders []models.Order) Stats {
	stats := Stats{Revenue: decimal.Zero, ByStatus: map[models.OrderStatus]int{}}
	for _, o := range orders {
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		if !o.Status.IsTerminal() {
			stats.Revenue = stats.Revenue.Add(o.GrandTotal)
		}
	}
	return stats
}
