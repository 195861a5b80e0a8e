// Command shop manages the local cart and places orders against the
// storefront API.
//
//	shop cart add --qty 2 p1
//	shop cart show
//	shop checkout --street "1 Main St" --city Springfield --postal-code 12345 --country US --payment Stripe
//
// A checkout that failed without a clear answer from the API can be retried
// with --session <id>; the API answers a repeated session with the order it
// already placed instead of a second one.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/jcmexdev/storefront-cart/internal/shop/core/cart"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/checkout"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/checkout/journal"
	journalsqlite "github.com/jcmexdev/storefront-cart/internal/shop/core/checkout/journal/sqlite"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/domain/entity"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "shop",
		Usage: "manage the cart and check out",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file read before the environment"},
		},
		Commands: []*cli.Command{
			{
				Name:  "cart",
				Usage: "inspect and change the cart",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print items and totals", Action: withApp(cartShow)},
					{
						Name:      "add",
						Usage:     "add a product",
						ArgsUsage: "<product-id>",
						Flags:     []cli.Flag{&cli.IntFlag{Name: "qty", Value: 1}},
						Action:    withApp(cartAdd),
					},
					{Name: "update", Usage: "set the quantity of a product", ArgsUsage: "<product-id> <qty>", Action: withApp(cartUpdate)},
					{Name: "remove", Usage: "remove a product", ArgsUsage: "<product-id>", Action: withApp(cartRemove)},
					{Name: "clear", Usage: "empty the cart", Action: withApp(cartClear)},
				},
			},
			{
				Name:  "checkout",
				Usage: "place an order for the cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "street", Required: true},
					&cli.StringFlag{Name: "city", Required: true},
					&cli.StringFlag{Name: "postal-code", Required: true},
					&cli.StringFlag{Name: "country", Required: true},
					&cli.StringFlag{Name: "payment", Value: string(entity.PaymentPayPal), Usage: "PayPal or Stripe"},
					&cli.StringFlag{Name: "session", Usage: "retry an earlier checkout session that did not place its order"},
				},
				Action: withApp(placeOrder),
			},
			{
				Name:      "history",
				Usage:     "print the journal of a checkout session",
				ArgsUsage: "<session-id>",
				Action:    withApp(history),
			},
		},
	}
}

func withApp(fn func(*cli.Context, *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(c.Context, c.String("env-file"))
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(c, a)
	}
}

func cartShow(c *cli.Context, a *app) error {
	printSnapshot(c.App.Writer, a.store.Snapshot())
	return nil
}

func cartAdd(c *cli.Context, a *app) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("usage: shop cart add [--qty N] <product-id>", 2)
	}
	if err := a.store.AddItem(c.Context, id, c.Int("qty")); err != nil {
		if errors.Is(err, ports.ErrProductNotFound) {
			return fmt.Errorf("product %q does not exist", id)
		}
		return err
	}
	printSnapshot(c.App.Writer, a.store.Snapshot())
	return nil
}

func cartUpdate(c *cli.Context, a *app) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: shop cart update <product-id> <qty>", 2)
	}
	qty, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("qty must be a number: %v", err), 2)
	}
	if err := a.store.UpdateQuantity(c.Context, c.Args().First(), qty); err != nil {
		return err
	}
	printSnapshot(c.App.Writer, a.store.Snapshot())
	return nil
}

func cartRemove(c *cli.Context, a *app) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("usage: shop cart remove <product-id>", 2)
	}
	if err := a.store.RemoveItem(c.Context, id); err != nil {
		return err
	}
	printSnapshot(c.App.Writer, a.store.Snapshot())
	return nil
}

func cartClear(c *cli.Context, a *app) error {
	return a.store.Clear(c.Context)
}

func placeOrder(c *cli.Context, a *app) error {
	ctx := c.Context
	sessionID := c.String("session")
	if sessionID != "" {
		if err := retryable(c, a, sessionID); err != nil {
			return err
		}
	}
	flow := checkout.NewFlow(ctx, a.store, a.submitter,
		checkout.WithJournal(a.journal), checkout.WithSessionID(sessionID))

	addr := entity.ShippingAddress{
		Street:     c.String("street"),
		City:       c.String("city"),
		PostalCode: c.String("postal-code"),
		Country:    c.String("country"),
	}
	if err := flow.SubmitShipping(ctx, addr); err != nil {
		return err
	}
	if err := flow.ConfirmPayment(ctx, entity.PaymentMethod(c.String("payment"))); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	printSnapshot(c.App.Writer, snap)

	orderID, err := flow.PlaceOrder(ctx)
	if err != nil {
		var rejected *ports.SubmissionError
		if errors.As(err, &rejected) {
			return fmt.Errorf("order not placed: %s (session %s)", rejected.Message, flow.Session().ID)
		}
		return err
	}
	fmt.Fprintf(c.App.Writer, "order placed: %s (session %s)\n", orderID, flow.Session().ID)
	return nil
}

// retryable refuses sessions this host never started and sessions that
// already placed their order.
func retryable(c *cli.Context, a *app, sessionID string) error {
	latest, err := a.journal.GetLatest(c.Context, sessionID)
	if errors.Is(err, journalsqlite.ErrSessionNotFound) {
		return fmt.Errorf("no checkout session %q to retry", sessionID)
	}
	if err != nil {
		return err
	}
	if latest.Event == journal.EventPlaced {
		return fmt.Errorf("session %q already placed order %s", sessionID, latest.Payload)
	}
	return nil
}

func history(c *cli.Context, a *app) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("usage: shop history <session-id>", 2)
	}
	entries, err := a.journal.History(c.Context, id)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no journal entries for session %q", id)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tSTAGE\tDETAIL")
	for _, e := range entries {
		detail := e.Payload
		if e.ErrorMessages != "[]" {
			detail = e.ErrorMessages
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.RecordedAt.Format("2006-01-02 15:04:05"), e.Event, e.Stage, detail)
	}
	return tw.Flush()
}

func printSnapshot(w io.Writer, snap cart.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(snap.Items) == 0 {
		fmt.Fprintln(tw, "cart is empty")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
		for _, e := range snap.Items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.ProductID, e.Name, e.Quantity, e.UnitPrice.StringFixed(2), e.LineTotal().StringFixed(2))
		}
	}
	b := snap.Breakdown
	fmt.Fprintf(tw, "\t\t\tItems\t%s\n", b.ItemsPrice.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tTax\t%s\n", b.TaxPrice.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tShipping\t%s\n", b.ShippingPrice.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", b.TotalPrice.StringFixed(2))
	_ = tw.Flush()
}
