// Command tariffctl prints the tariff dashboard in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/tariff-monitor/internal/dashboard"
	"github.com/kjannette/tariff-monitor/internal/logging"
	"github.com/kjannette/tariff-monitor/internal/models"
)

func main() {
	baseURL := flag.String("url", envOr("TARIFF_API_URL", "http://localhost:3001"), "server base URL")
	apiKey := flag.String("apikey", os.Getenv("API_KEY"), "API key sent as apikey and Bearer token")
	watch := flag.Duration("watch", 0, "refresh interval; 0 prints once")
	newsOnly := flag.Bool("news", false, "show trade news only")
	tariffsOnly := flag.Bool("tariffs", false, "show tariffs only")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logging.New(*logLevel, true)
	inv := dashboard.NewHTTPInvoker(*baseURL, *apiKey)
	opts := dashboard.Options{Logger: log}
	tariffs := dashboard.NewTariffData(inv, opts)
	news := dashboard.NewTradeNews(inv, opts)

	showTariffs := !*newsOnly
	showNews := !*tariffsOnly

	refresh := func(ctx context.Context) {
		if showTariffs {
			tariffs.Refetch(ctx)
		}
		if showNews {
			news.Refetch(ctx)
		}
		draw(os.Stdout, *watch > 0, showTariffs, showNews, tariffs.State(), news.State())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresh(ctx)
	if *watch <= 0 {
		if tariffs.State().Error != "" || news.State().Error != "" {
			os.Exit(1)
		}
		return
	}

	poller := dashboard.NewPoller(*watch, refresh, log)
	poller.Start()
	<-ctx.Done()
	poller.Stop()
}

func draw(w io.Writer, clear, showTariffs, showNews bool, t dashboard.State[models.TariffEnvelope], n dashboard.State[models.NewsEnvelope]) {
	if clear {
		fmt.Fprint(w, "\033[H\033[2J")
	}
	if showTariffs {
		dashboard.RenderTariffs(w, t)
	}
	if showTariffs && showNews {
		fmt.Fprintln(w)
	}
	if showNews {
		dashboard.RenderNews(w, n)
	}
	if clear {
		fmt.Fprintf(w, "\nrefreshed %s\n", time.Now().Format(time.Kitchen))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
