// Command storefront is a terminal order-entry client: it signs in against
// the order service, drives the order builder (rows, running total, preview)
// and places the confirmed order.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"icecream-storefront/internal/builder"
	"icecream-storefront/internal/catalog"
	"icecream-storefront/internal/client"
	"icecream-storefront/internal/config"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[storefront] ", log.LstdFlags)

	api, err := client.New(cfg.APIBaseURL)
	if err != nil {
		logger.Fatalf("init client: %v", err)
	}

	app := &app{
		api:     api,
		builder: builder.New(),
		out:     os.Stdout,
	}
	app.run(bufio.NewScanner(os.Stdin))
}

type app struct {
	api     *client.Client
	builder *builder.Builder
	out     *os.File
}

func (a *app) run(in *bufio.Scanner) {
	fmt.Fprintln(a.out, "Sheetal Ice Cream — order entry. Type 'help' for commands.")
	a.prompt()
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			a.prompt()
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		a.dispatch(cmd, args)
		a.prompt()
	}
}

func (a *app) prompt() {
	fmt.Fprintf(a.out, "[%s] > ", a.builder.Phase())
}

func (a *app) dispatch(cmd string, args []string) {
	switch cmd {
	case "help":
		a.printHelp()
	case "login":
		a.login(args)
	case "register":
		a.register(args)
	case "catalog":
		a.printCatalog()
	case "rows":
		a.printRows()
	case "add":
		a.report(a.builder.AddRow())
	case "remove":
		a.withIndex(args, func(i int) error { return a.builder.RemoveRow(i) })
	case "pick":
		a.pick(args)
	case "qty":
		a.setQty(args)
	case "review":
		a.review()
	case "back":
		a.report(a.builder.Dismiss())
	case "confirm":
		a.confirm()
	case "orders":
		a.printOrders()
	case "profile":
		a.printProfile()
	default:
		fmt.Fprintf(a.out, "unknown command %q; type 'help'\n", cmd)
	}
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  login <username> <password>     sign in
  register <user> <pass> <name..> create a business account
  catalog                         list flavours by category
  rows                            show order rows and running total
  add                             add an empty row
  remove <n>                      remove row n
  pick <n> <flavour name>         choose a flavour for row n
  qty <n> <count>                 set quantity for row n
  review                          validate and show the order preview
  back                            close the preview and keep editing
  confirm                         place the previewed order
  orders                          show order history
  profile                         show the signed-in business
  quit
`)
}

func (a *app) login(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: login <username> <password>")
		return
	}
	ctx, cancel := a.ctx()
	defer cancel()
	user, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		a.printNetErr(err)
		return
	}
	a.attachBusiness()
	fmt.Fprintf(a.out, "signed in as %s\n", user.Username)
}

func (a *app) register(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(a.out, "usage: register <username> <password> <business name>")
		return
	}
	ctx, cancel := a.ctx()
	defer cancel()
	user, err := a.api.Register(ctx, client.RegisterInput{
		Username:     args[0],
		Password:     args[1],
		BusinessName: strings.Join(args[2:], " "),
	})
	if err != nil {
		a.printNetErr(err)
		return
	}
	a.attachBusiness()
	fmt.Fprintf(a.out, "registered and signed in as %s\n", user.Username)
}

// attachBusiness copies the profile's business details onto the draft, so
// validation and submission know who is ordering.
func (a *app) attachBusiness() {
	ctx, cancel := a.ctx()
	defer cancel()
	user, err := a.api.Me(ctx)
	if err != nil || user.Business == nil {
		return
	}
	_ = a.builder.SetContact(builder.Contact{
		BusinessID:   user.Business.ID,
		BusinessName: user.Business.Name,
		Phone:        user.Business.Phone,
		Address:      user.Business.Address,
	})
}

func (a *app) printCatalog() {
	for _, cat := range catalog.Categories() {
		fmt.Fprintf(a.out, "%s:\n", cat.Name)
		for _, it := range cat.Items {
			fmt.Fprintf(a.out, "  %-18s %s\n", it.Name, builder.FormatAmount(it.Price))
		}
	}
}

func (a *app) printRows() {
	for i, r := range a.builder.Rows() {
		name := r.Flavour
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(a.out, "  %d. %-18s x%-3d %s\n", i+1, name, r.Quantity, builder.FormatAmount(r.Subtotal()))
	}
	fmt.Fprintf(a.out, "Total: %s\n", builder.FormatAmount(a.builder.Total()))
}

func (a *app) withIndex(args []string, fn func(int) error) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: <command> <row number>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "row number must be numeric")
		return
	}
	a.report(fn(n - 1))
}

func (a *app) pick(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: pick <row number> <flavour name>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "row number must be numeric")
		return
	}
	name := strings.Join(args[1:], " ")
	if !catalog.Has(name) {
		fmt.Fprintf(a.out, "unknown flavour %q; see 'catalog'\n", name)
		return
	}
	a.report(a.builder.SelectFlavour(n-1, name))
}

func (a *app) setQty(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: qty <row number> <count>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "row number must be numeric")
		return
	}
	// Non-numeric input coerces to 1, matching the form behavior.
	q, err := strconv.Atoi(args[1])
	if err != nil {
		q = 1
	}
	a.report(a.builder.SetQuantity(n-1, q))
}

func (a *app) review() {
	preview, err := a.builder.Review()
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintln(a.out, "Order Summary — review before confirming:")
	if preview.Contact.BusinessName != "" {
		fmt.Fprintf(a.out, "  Business: %s\n", preview.Contact.BusinessName)
	}
	for _, it := range preview.Items {
		fmt.Fprintf(a.out, "  %s  %d x %s = %s\n",
			it.Flavour, it.Quantity, builder.FormatAmount(it.UnitPrice), builder.FormatAmount(it.Subtotal))
	}
	fmt.Fprintf(a.out, "  Total Amount: %s\n", builder.FormatAmount(preview.Total))
	fmt.Fprintln(a.out, "type 'confirm' to place the order, or 'back' to keep editing")
}

func (a *app) confirm() {
	ctx, cancel := a.ctx()
	defer cancel()

	placer := builder.PlacerFunc(func(ctx context.Context, businessID int64, items []builder.LineItem) (int64, error) {
		in := make([]client.OrderItemInput, 0, len(items))
		for _, it := range items {
			in = append(in, client.OrderItemInput{
				ItemName: it.ItemName,
				Quantity: it.Quantity,
				Price:    it.Price,
			})
		}
		order, err := a.api.PlaceOrder(ctx, businessID, in)
		if err != nil {
			return 0, err
		}
		return order.ID, nil
	})

	orderID, err := a.builder.Submit(ctx, placer)
	if err != nil {
		var phaseErr *builder.PhaseError
		if errors.As(err, &phaseErr) {
			a.report(err)
			return
		}
		a.printNetErr(err)
		// Back to the preview so confirm can simply be retried.
		_ = a.builder.Acknowledge()
		return
	}
	fmt.Fprintf(a.out, "Order placed! Order ID: #%d\n", orderID)
	_ = a.builder.Acknowledge()
}

func (a *app) printOrders() {
	ctx, cancel := a.ctx()
	defer cancel()
	orders, err := a.api.MyOrders(ctx)
	if err != nil {
		a.printNetErr(err)
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "no orders yet")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(a.out, "#%d  %s  %s  %s\n",
			o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status, builder.FormatAmount(o.TotalAmount))
		for _, it := range o.Items {
			fmt.Fprintf(a.out, "    %s x%d @ %s\n", it.ItemName, it.Quantity, builder.FormatAmount(it.Price))
		}
	}
}

func (a *app) printProfile() {
	ctx, cancel := a.ctx()
	defer cancel()
	user, err := a.api.Me(ctx)
	if err != nil {
		a.printNetErr(err)
		return
	}
	fmt.Fprintf(a.out, "username: %s  role: %s\n", user.Username, user.Role)
	if user.Business != nil {
		b := user.Business
		fmt.Fprintf(a.out, "business: %s\nphone: %s\naddress: %s\n", b.Name, b.Phone, b.Address)
	}
}

func (a *app) report(err error) {
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
	}
}

func (a *app) printNetErr(err error) {
	var transport *client.TransportError
	if errors.As(err, &transport) {
		fmt.Fprintln(a.out, "Cannot reach server. Is the backend running?")
		return
	}
	var rejection *client.ServerRejection
	if errors.As(err, &rejection) {
		fmt.Fprintf(a.out, "Error: %s\n", rejection.Error())
		return
	}
	fmt.Fprintln(a.out, err.Error())
}

func (a *app) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
