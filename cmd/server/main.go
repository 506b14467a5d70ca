package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hieplq/barber-queue/internal/config"
	"github.com/hieplq/barber-queue/internal/database"
	"github.com/hieplq/barber-queue/internal/handler"
	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/payment"
	"github.com/hieplq/barber-queue/internal/queue"
	"github.com/hieplq/barber-queue/internal/repository"
	"github.com/hieplq/barber-queue/internal/router"
	"github.com/hieplq/barber-queue/internal/scheduler"
	queue_publisher "github.com/hieplq/barber-queue/internal/service"
	"github.com/hieplq/barber-queue/internal/settings"
	"github.com/hieplq/barber-queue/internal/ticketing"
)

func main() {
	_ = godotenv.Load() // load .env when present; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unavailable; features degrade

	ticketRepo := repository.NewTicketRepo(db)
	barberRepo := repository.NewBarberRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	settingRepo := repository.NewSettingRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)

	settingsStore := settings.NewStore(settingRepo)

	sched := scheduler.New(db, ticketRepo, barberRepo, cfg.ShopLocation)
	sched.OnAssign(func(a scheduler.Assignment) {
		publish(cfg.RabbitURL, queue.TypeTicketAssigned, queue.TicketAssignedEvent{
			TicketID:     a.TicketID,
			TicketNumber: a.TicketNumber,
			BarberID:     a.BarberID,
			BarberName:   a.BarberName,
			AssignedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	})

	ticketSvc := ticketing.NewService(db, ticketRepo, barberRepo, serviceRepo, settingsStore, sched, cfg.ShopLocation)
	ticketSvc.OnCreated(func(t *model.Ticket) {
		publish(cfg.RabbitURL, queue.TypeTicketCreated, queue.TicketCreatedEvent{
			TicketID:     t.ID,
			TicketNumber: t.TicketNumber,
			Day:          t.Day,
			TotalPrice:   t.TotalPrice,
			CreatedAt:    t.JoinedAt.UTC().Format(time.RFC3339),
		})
	})

	reconciler := payment.NewReconciler(db, ticketRepo, orderRepo, userRepo, serviceRepo, barberRepo, cfg.ShopLocation)
	reconciler.OnSettled(func(res payment.Result) {
		// a settled ticket may have just freed its barber
		sched.Trigger()
		publish(cfg.RabbitURL, queue.TypePaymentSettled, queue.PaymentSettledEvent{
			TicketID:     res.TicketID,
			TicketNumber: res.TicketNumber,
			AmountPaid:   res.AmountPaid,
			SettledAt:    time.Now().UTC().Format(time.RFC3339),
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)
	sched.Trigger() // pick up work left over from before the restart

	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartEventConsumer(cfg.RabbitURL); err != nil {
				log.Printf("event consumer disabled: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterQueue(e,
		handler.NewTicketHandler(ticketSvc),
		handler.NewCatalogHandler(serviceRepo),
		cfg.JWTSecret, config.LoadRateLimitConfig(), config.LoadCacheConfig(), rdb)
	router.RegisterStaff(e, handler.NewTicketHandler(ticketSvc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(settingsStore, barberRepo), cfg.JWTSecret)
	router.RegisterProfile(e, handler.NewProfileHandler(userRepo), cfg.JWTSecret)
	router.RegisterOrders(e, handler.NewOrderHandler(orderRepo), cfg.JWTSecret)
	router.RegisterWebhooks(e, handler.NewWebhookHandler(cfg.WebhookSecret, reconciler))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// publish sends an event to the broker in the background. Event delivery is
// observational; a broker outage must never fail or slow the request that
// produced the event. An empty url means the event pipeline is disabled.
func publish(url, eventType string, payload interface{}) {
	if url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.Publish(ctx, url, eventType, payload); err != nil {
			log.Printf("publish %s: %v", eventType, err)
		}
	}()
}
