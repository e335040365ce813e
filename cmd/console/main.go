// Command console is the operator-facing entry point: it checks backend
// health, lists and inspects sales orders, evaluates delivery promises and
// browses the audit history and saved scenarios.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"promise-console/internal/audit"
	"promise-console/internal/classify"
	"promise-console/internal/client"
	"promise-console/internal/config"
	"promise-console/internal/draft"
	"promise-console/internal/models"
	"promise-console/internal/scenario"
	"promise-console/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()

	var err error
	switch os.Args[1] {
	case "health":
		err = runHealth(cfg)
	case "orders":
		err = runOrders(cfg, os.Args[2:])
	case "evaluate":
		err = runEvaluate(cfg, os.Args[2:])
	case "history":
		err = runHistory(cfg, os.Args[2:])
	case "scenarios":
		err = runScenarios(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: console <command> [flags]

Commands:
  health      Check backend health and connectivity
  orders      List sales orders
  evaluate    Evaluate a delivery promise
  history     Browse the evaluation audit trail
  scenarios   Manage saved scenarios`)
}

func newClient(cfg *config.Config) *client.OTPClient {
	return client.NewOTPClient(client.Options{
		BaseURL:         cfg.BaseURL,
		MockMode:        cfg.MockMode,
		HealthTimeout:   cfg.HealthTimeout,
		EvaluateTimeout: cfg.EvaluateTimeout,
		LookupTimeout:   cfg.LookupTimeout,
	})
}

func runHealth(cfg *config.Config) error {
	otp := newClient(cfg)
	if warning := otp.BaseURLWarning(); warning != "" {
		fmt.Println("Warning:", warning)
	}

	sess := session.New(session.Options{Client: otp})
	health := sess.Health(context.Background())

	fmt.Printf("Backend:  %s\n", otp.BaseURL())
	fmt.Printf("Status:   %s\n", health.Status)
	fmt.Printf("Version:  %s\n", health.Version)
	fmt.Printf("ERPNext:  connected=%v\n", health.ERPNextConnected)
	if health.Message != "" {
		fmt.Printf("Message:  %s\n", health.Message)
	}
	return nil
}

func runOrders(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("orders", flag.ExitOnError)
	search := flags.String("search", "", "filter by order name or customer")
	limit := flags.Int("limit", 50, "maximum number of orders")
	flags.Parse(args)

	sess := session.New(session.Options{Client: newClient(cfg)})
	orders, err := sess.ListOrders(context.Background(), client.ListParams{
		Search: *search,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Println("No sales orders found")
		return nil
	}
	for _, order := range orders {
		fmt.Printf("%-16s %-24s date=%s items=%d\n",
			order.Name, order.CustomerName, order.TransactionDate, order.ItemCount)
	}
	return nil
}

func runEvaluate(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("evaluate", flag.ExitOnError)
	orderID := flags.String("order", "", "evaluate from an existing sales order")
	file := flags.String("file", "", "evaluate from a JSON request file")
	customer := flags.String("customer", "", "customer name")
	items := flags.String("items", "", "comma-separated item lines, code:qty[:warehouse]")
	desiredDate := flags.String("desired-date", "", "desired delivery date (YYYY-MM-DD)")
	mode := flags.String("mode", string(models.ModeLatestAcceptable), "delivery mode")
	noWeekends := flags.Bool("no-weekends", true, "avoid weekend deliveries")
	cutoff := flags.String("cutoff", draft.DefaultCutoffTime, "daily order cutoff (HH:MM)")
	buffer := flags.Int("buffer", draft.DefaultBufferDays, "lead time buffer in days")
	message := flags.String("message", "", "print a customer message: formal or friendly")
	saveAs := flags.String("save-as", "", "save the evaluation as a named scenario")
	flags.Parse(args)

	ctx := context.Background()

	auditStore, err := audit.Open(ctx, cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer auditStore.Close()

	sess := session.New(session.Options{Client: newClient(cfg), Audits: auditStore})

	var current draft.Draft
	if *file != "" {
		current, err = draftFromFile(*file)
		if err != nil {
			return err
		}
	} else if *orderID != "" {
		sess.SwitchMode(draft.ModeFromOrder)
		if err := sess.SelectOrder(ctx, *orderID); err != nil {
			return fmt.Errorf("load sales order %s: %w", *orderID, err)
		}
		current = sess.Reconciler().Draft(draft.ModeFromOrder)
	} else {
		current = draft.NewDraft()
		current.Customer = *customer
		current.DesiredDate = *desiredDate
		current.DeliveryMode = models.DeliveryMode(*mode)
		current.NoWeekends = *noWeekends
		current.CutoffTime = *cutoff
		current.BufferDays = *buffer
		parsed, err := parseItems(*items, current.DefaultWarehouse)
		if err != nil {
			return err
		}
		current.Items = parsed
	}

	result, err := sess.Evaluate(ctx, current)
	if err != nil {
		return err
	}
	printResult(result)

	if *message != "" {
		tone := classify.ToneFormal
		if *message == "friendly" {
			tone = classify.ToneFriendly
		}
		fmt.Println()
		fmt.Println(classify.CustomerMessage(result.Response, tone))
	}

	if *saveAs != "" {
		store := scenario.NewStore(cfg.ScenarioPath)
		saved, err := store.Save(scenarioFromResult(*saveAs, current, result))
		if err != nil {
			return fmt.Errorf("save scenario: %w", err)
		}
		fmt.Printf("\nSaved scenario %q (%s)\n", saved.Name, saved.ID)
	}
	return nil
}

// draftFromFile reads a promise request from a JSON file and maps it onto a
// draft, filling the usual defaults for omitted rules.
func draftFromFile(path string) (draft.Draft, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("read request file: %w", err)
	}
	var req models.PromiseRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return draft.Draft{}, fmt.Errorf("parse request file: %w", err)
	}

	d := draft.NewDraft()
	d.Customer = req.Customer
	d.DesiredDate = req.DesiredDate
	d.SalesOrderID = req.SalesOrderID
	if len(req.Items) > 0 {
		d.Items = req.Items
	}
	if req.Rules != nil {
		d.NoWeekends = req.Rules.NoWeekends
		if req.Rules.CutoffTime != "" {
			d.CutoffTime = req.Rules.CutoffTime
		}
		if req.Rules.Timezone != "" {
			d.CutoffTimezone = req.Rules.Timezone
		}
		if req.Rules.LeadTimeBufferDays > 0 {
			d.BufferDays = req.Rules.LeadTimeBufferDays
		}
		if req.Rules.DesiredDateMode != "" {
			d.DeliveryMode = req.Rules.DesiredDateMode
		}
		d.OrderCreatedAt = req.Rules.OrderCreatedAt
	}
	return d, nil
}

// parseItems expands "code:qty[:warehouse]" entries into line items.
func parseItems(expr, defaultWarehouse string) ([]models.LineItem, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("at least one -items entry is required, e.g. -items SKU001:20")
	}
	var items []models.LineItem
	for _, entry := range strings.Split(expr, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid item %q, expected code:qty[:warehouse]", entry)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("invalid quantity in item %q", entry)
		}
		warehouse := defaultWarehouse
		if len(parts) > 2 && parts[2] != "" {
			warehouse = parts[2]
		}
		items = append(items, models.LineItem{ItemCode: parts[0], Qty: qty, Warehouse: warehouse})
	}
	return items, nil
}

func printResult(result session.Result) {
	resp := result.Response
	facts := result.Facts

	fmt.Printf("Status:      %s (%s)\n", facts.StatusLabel, facts.Tier)
	fmt.Printf("Confidence:  %s\n", resp.Confidence)
	if resp.PromiseDate != nil {
		fmt.Printf("Promise:     %s\n", *resp.PromiseDate)
	} else {
		fmt.Println("Promise:     none")
	}
	if facts.OnTimeLabel != classify.OnTimeNone {
		fmt.Printf("Delivery:    %s\n", facts.OnTimeLabel)
	}
	if facts.HasShortage {
		fmt.Printf("Shortage:    %d units total\n", facts.TotalShortage)
	}

	if len(facts.Drivers) > 0 {
		fmt.Println("\nDrivers:")
		for _, driver := range facts.Drivers {
			fmt.Printf("  [%s] %s\n", driver.Category, driver.Text)
		}
	}

	if facts.Healthy {
		fmt.Println("\nNo actions needed")
	} else if len(facts.Actions) > 0 {
		fmt.Println("\nRecommended actions:")
		for _, action := range facts.Actions {
			line := "  - " + action.Label
			if action.Impact != "" {
				line += " (" + action.Impact + ")"
			}
			fmt.Println(line)
		}
	}
}

func scenarioFromResult(name string, d draft.Draft, result session.Result) scenario.Scenario {
	sc := scenario.Scenario{
		Name:         name,
		Customer:     d.Customer,
		Items:        d.Items,
		Warehouse:    d.DefaultWarehouse,
		DesiredDate:  d.DesiredDate,
		DeliveryMode: d.DeliveryMode,
		Confidence:   result.Response.Confidence,
		OnTime:       result.Response.OnTime,
	}
	if result.Response.PromiseDate != nil {
		sc.PromiseDate = *result.Response.PromiseDate
	}
	return sc
}

func runHistory(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	confidence := flags.String("confidence", "", "filter by confidence: HIGH, MEDIUM or LOW")
	onTime := flags.String("on-time", "", "filter by outcome: on-time or late")
	since := flags.String("since", "", "only records on or after this date (YYYY-MM-DD)")
	flags.Parse(args)

	ctx := context.Background()
	store, err := audit.Open(ctx, cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()

	filter := audit.Filter{
		Confidence: models.Confidence(*confidence),
		OnTime:     *onTime,
	}
	if *since != "" {
		from, err := time.Parse("2006-01-02", *since)
		if err != nil {
			return fmt.Errorf("invalid -since date: %w", err)
		}
		filter.From = from
	}

	records, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No audit records found")
		return nil
	}
	for _, rec := range records {
		outcome := "n/a"
		if rec.OnTime != nil {
			if *rec.OnTime {
				outcome = "on-time"
			} else {
				outcome = "late"
			}
		}
		fmt.Printf("%s  %-20s items=%d confidence=%-6s promise=%-10s %s\n",
			rec.Timestamp.Format(time.RFC3339), rec.Customer, rec.ItemCount,
			rec.Confidence, valueOrDash(rec.PromiseDate), outcome)
	}
	return nil
}

func runScenarios(cfg *config.Config, args []string) error {
	store := scenario.NewStore(cfg.ScenarioPath)

	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		scenarios, err := store.List()
		if err != nil {
			return err
		}
		if len(scenarios) == 0 {
			fmt.Println("No saved scenarios")
			return nil
		}
		for _, sc := range scenarios {
			fmt.Printf("%s  %-20s customer=%-20s promise=%-10s confidence=%s\n",
				sc.ID, sc.Name, valueOrDash(sc.Customer), valueOrDash(sc.PromiseDate), sc.Confidence)
		}
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: console scenarios delete <id>")
		}
		return store.Delete(args[1])
	case "clear":
		return store.Clear()
	default:
		return fmt.Errorf("unknown scenarios action %q (expected list, delete or clear)", action)
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
