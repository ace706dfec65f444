package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unalone/config"
	"unalone/internal/adapters/push"
	"unalone/internal/adapters/rest"
	"unalone/internal/domain"
	"unalone/internal/eventsync"
	"unalone/internal/metrics"
	"unalone/internal/repository/sqlite"
	"unalone/internal/services"
	"unalone/internal/store"
	"unalone/internal/view"
)

const requestTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// consoleNotifier prints user-visible notices to stdout.
type consoleNotifier struct{}

func (consoleNotifier) Notify(level domain.NoticeLevel, message string) {
	fmt.Printf("[%s] %s\n", level, message)
}

func run() error {
	identifier := flag.String("login", "", "email or username to log in with")
	password := flag.String("password", "", "password for -login")
	search := flag.String("search", "", "filter events by text")
	typeFilter := flag.String("type", "", "filter events by exact type")
	sortKey := flag.String("sort", "date", "sort key: date, distance, popularity")
	lat := flag.Float64("lat", 0, "your latitude, for distance sorting")
	lng := flag.Float64("lng", 0, "your longitude, for distance sorting")
	joinID := flag.String("join", "", "join the event with this id")
	leaveID := flag.String("leave", "", "leave the event with this id")
	consent := flag.String("consent", "", "record cookie consent: all or necessary")
	exportDir := flag.String("export", "", "export your account data into this directory")
	place := flag.String("place", "", "look up a place name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()

	state, err := sqlite.Open(cfg.LocalDBPath)
	if err != nil {
		return err
	}
	defer state.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	met := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics listener stopped", "err", err)
			}
		}()
	}

	notifier := consoleNotifier{}
	client := rest.NewClient(cfg.APIBaseURL, &http.Client{Timeout: requestTimeout}, state, logger)
	eventsAPI := rest.NewEventsAPI(client)
	authAPI := rest.NewAuthAPI(client)
	chatAPI := rest.NewChatAPI(client)

	channel := push.NewChannel(cfg.SocketURL, met, logger)
	defer channel.Disconnect()

	eventStore := store.NewEventStore()
	snapshot := eventsync.NewSnapshotLoader(eventsAPI, eventStore, met, logger)

	session := services.NewSessionService(authAPI, state, channel, notifier, logger, requestTimeout)
	chat := services.NewChatService(chatAPI, channel, notifier, logger, requestTimeout)
	events := services.NewEventService(eventsAPI, eventStore, notifier, logger, requestTimeout)
	privacy := services.NewPrivacyService(rest.NewPrivacyAPI(client), state, channel, notifier, logger, requestTimeout)
	geocoder := rest.NewGeocodingAPI(client)
	reconciler := eventsync.NewReconciler(snapshot, eventStore, session, chat, notifier, met, logger, requestTimeout)
	reconciler.Bind(channel)

	ctx := context.Background()

	if *identifier != "" {
		if _, err := session.Login(ctx, *identifier, *password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	} else if user, ok, err := session.Restore(ctx); err != nil {
		logger.Warn("session restore failed", "err", err)
	} else if ok {
		logger.Info("session restored", "user", user.Name)
	}

	switch *consent {
	case "":
	case "all":
		if err := privacy.AcceptAll(ctx); err != nil {
			logger.Warn("recording consent failed", "err", err)
		}
	case "necessary":
		if err := privacy.DeclineOptional(ctx); err != nil {
			logger.Warn("recording consent failed", "err", err)
		}
	default:
		return fmt.Errorf("unknown -consent value %q", *consent)
	}

	if *place != "" {
		places, err := geocoder.SearchPlaces(ctx, *place)
		if err != nil {
			return fmt.Errorf("look up place: %w", err)
		}
		for _, p := range places {
			fmt.Printf("%s  (%.5f, %.5f)\n", p.DisplayName, p.Lat, p.Lng)
		}
	}

	if err := snapshot.Refresh(ctx); err != nil {
		notifier.Notify(domain.NoticeError, "Could not load events")
		logger.Warn("initial snapshot failed", "err", err)
	}

	if *joinID != "" {
		if _, err := events.Join(ctx, *joinID); err != nil {
			logger.Warn("join failed", "id", *joinID, "err", err)
		}
	}
	if *leaveID != "" {
		if _, err := events.Leave(ctx, *leaveID); err != nil {
			logger.Warn("leave failed", "id", *leaveID, "err", err)
		}
	}
	if *exportDir != "" {
		if _, err := privacy.ExportData(ctx, *exportDir); err != nil {
			logger.Warn("export failed", "err", err)
		}
	}

	var userPos *domain.Position
	if *lat != 0 || *lng != 0 {
		userPos = &domain.Position{Lat: *lat, Lng: *lng}
	}
	render := func() {
		visible := view.FilterSort(eventStore.List(), *search, *typeFilter, view.SortKey(*sortKey), userPos)
		fmt.Printf("--- %d event(s) ---\n", len(visible))
		for _, e := range visible {
			line := fmt.Sprintf("%s  %s (%s) @ %s", e.Datetime, e.Title, e.Type, e.PlaceName)
			if userPos != nil {
				d := view.Haversine(*userPos, domain.Position{Lat: e.Lat, Lng: e.Lng})
				line += fmt.Sprintf("  [%.1f km]", d)
			}
			fmt.Println(line)
		}
	}
	render()

	// Re-render whenever the reconciled list changes.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	lastLen := eventStore.Len()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if n := eventStore.Len(); n != lastLen {
				lastLen = n
				render()
			}
		case sig := <-exit:
			logger.Info("signal caught", "sig", sig)
			return nil
		}
	}
}
