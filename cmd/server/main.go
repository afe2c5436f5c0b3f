package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-ticket-core/config"
	"go-ticket-core/internal/cache"
	"go-ticket-core/internal/crypto"
	"go-ticket-core/internal/database"
	"go-ticket-core/internal/model"
	"go-ticket-core/internal/queue"
	"go-ticket-core/internal/repository"
	"go-ticket-core/internal/service"
	"go-ticket-core/internal/worker"
	"go-ticket-core/migrations"
	"go-ticket-core/pkg/clock"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	hasher := crypto.NewBcryptHasher()

	capacityRepo := repository.NewCapacityRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	ledger := service.NewCapacityLedger(capacityRepo, clk)
	tokens := service.NewTokenService(tokenRepo, hasher, clk)
	expiry := service.NewOfferExpiryService(offerRepo, clk)
	tickets := service.NewTicketService(pool, ticketRepo, clk)

	inventory := cache.NewCapacityInventoryManager(rdb)
	if err := warmUpInventory(ctx, offerRepo, capacityRepo, inventory); err != nil {
		log.Fatalf("Failed to warm up inventory: %v", err)
	}

	reservationQueue, err := queue.NewRedisStreamReservationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize reservation queue: %v", err)
	}

	reservations := service.NewReservationService(pool, reservationRepo, ledger, tickets, inventory, reservationQueue)

	reservationWorker := worker.NewReservationWorker(reservations, reservationQueue)
	if err := reservationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start reservation worker: %v", err)
	}

	sweeper := worker.NewSweepWorker(expiry, tokens, cfg.Sweep.Interval)
	sweeper.Start(ctx)

	log.Println("ticket core running; press Ctrl+C to stop")
	<-ctx.Done()
	log.Println("shutting down")
}

// warmUpInventory seeds the Redis counters for every capacity backing a
// sellable offer, so the first burst of reservations never misses the cache.
func warmUpInventory(
	ctx context.Context,
	offers repository.OfferRepository,
	capacities repository.CapacityRepository,
	inventory cache.CapacityInventoryManager,
) error {
	available, err := offers.ListByStatus(ctx, model.OfferStatusAvailable)
	if err != nil {
		return err
	}

	seen := make(map[int]bool)
	for _, offer := range available {
		if seen[offer.CapacityID] {
			continue
		}
		seen[offer.CapacityID] = true

		units, err := capacities.GetAvailableUnits(ctx, offer.CapacityID)
		if err != nil {
			return err
		}
		if err := inventory.WarmUpInventory(ctx, offer.CapacityID, units); err != nil {
			return err
		}
	}
	return nil
}
