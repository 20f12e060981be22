package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/market"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
)

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" || *password == "" {
		return fmt.Errorf("register: -username, -email and -password are required")
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.session.Register(ctx, *username, *email, *password); err != nil {
		return err
	}

	fmt.Println("registered and logged in as", *email)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password are required")
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.session.Login(ctx, *email, *password); err != nil {
		return err
	}

	fmt.Println("logged in as", *email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.session.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("logged out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	user, err := a.session.CurrentUser(ctx)
	if err != nil {
		if market.IsUnauthenticated(err) {
			fmt.Println("not logged in")
			return nil
		}
		return err
	}

	fmt.Printf("%s <%s> (id %s), balance %d\n", user.Name, user.Email, user.ID, user.Balance)
	return nil
}

func (a *app) cmdSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	side := fs.String("side", "", "order side: bid or ask")
	priceRaw := fs.String("price", "", "limit price")
	quantity := fs.Int64("quantity", 0, "quantity, whole units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	price, err := decimal.NewFromString(*priceRaw)
	if err != nil {
		return fmt.Errorf("submit: bad -price %q", *priceRaw)
	}
	if *quantity <= 0 {
		return fmt.Errorf("submit: -quantity must be positive")
	}

	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	receipt, err := a.market.SubmitOrder(ctx, *side, price, *quantity)
	if err != nil {
		return err
	}

	fmt.Printf("%s (order %s)\n", receipt.Message, receipt.OrderID)
	return nil
}

func (a *app) cmdShow(ctx context.Context) error {
	ctx, cancel := a.opCtx(ctx)
	defer cancel()

	if !a.session.IsAuthenticated(ctx) {
		fmt.Println("not logged in")
		return nil
	}

	if err := a.sync.RefreshAll(ctx); err != nil {
		return err
	}

	renderSnapshot(a.sync.Snapshot())
	return nil
}

// cmdWatch периодически синхронизирует снимок до сигнала остановки.
// Неудачный тик не прерывает цикл: прежний снимок остаётся на экране,
// ошибка уходит в лог.
func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", a.cfg.Watch.Interval, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.sync.InitialLoad(ctx); err != nil {
		a.log.Warn("initial_load_failed", slog.String("err", err.Error()))
	}
	renderSnapshot(a.sync.Snapshot())

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tickCtx, cancel := a.opCtx(ctx)
			err := a.sync.RefreshAll(tickCtx)
			cancel()

			if err != nil {
				a.log.Warn("refresh_tick_failed", slog.String("err", err.Error()))
				continue
			}

			renderSnapshot(a.sync.Snapshot())
		}
	}
}

// opCtx ограничивает одиночную операцию сервисным таймаутом.
func (a *app) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Timeouts.Service)
}

// renderSnapshot печатает стакан и ленту сделок в табличном виде.
func renderSnapshot(snap models.Snapshot) {
	if snap.SyncedAt.IsZero() {
		fmt.Println("no data yet")
		return
	}

	fmt.Printf("synced at %s\n\n", snap.SyncedAt.Format(time.RFC3339))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "BIDS\tprice\tqty\tuser")
	for _, o := range snap.Book.Bids {
		fmt.Fprintf(w, "\t%s\t%d\t%s\n", o.Price.String(), o.Quantity, o.Owner)
	}

	fmt.Fprintln(w, "ASKS\tprice\tqty\tuser")
	for _, o := range snap.Book.Asks {
		fmt.Fprintf(w, "\t%s\t%d\t%s\n", o.Price.String(), o.Quantity, o.Owner)
	}

	fmt.Fprintln(w, "TRADES\tprice\tqty\ttaker\ttime")
	for _, t := range snap.Trades {
		fmt.Fprintf(w, "\t%s\t%d\t%s\t%s\n",
			t.Price.String(), t.Quantity, t.TakerSide, t.Timestamp.Format(time.RFC3339))
	}

	_ = w.Flush()
	fmt.Println()
}
