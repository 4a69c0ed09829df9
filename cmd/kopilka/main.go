package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"kopilka/internal/amqp"
	"kopilka/internal/config"
	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/services"
	"kopilka/internal/storage"
)

const usage = `Usage: kopilka <command> [flags]

Commands:
  register    create an account
  add         record an expense
  report      sum expenses per category over a window
  categories  list the category catalog
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	cfg := config.Load()
	log.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	// The event stream is optional for the CLI; without a broker
	// expenses are still recorded, just not exported.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			store.Close()
			return fmt.Errorf("connect AMQP: %w", err)
		}
	}

	ledger := services.NewLedgerService(store, events)
	defer ledger.Close()

	ctx := context.Background()

	switch command {
	case "register":
		return runRegister(ctx, ledger, args)
	case "add":
		return runAdd(ctx, ledger, args)
	case "report":
		return runReport(ctx, ledger, args)
	case "categories":
		return runCategories(ctx, ledger, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runRegister(ctx context.Context, ledger *services.LedgerService, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	id := fs.Int64("id", 0, "stable account id (required)")
	username := fs.String("username", "", "username (optional)")
	admin := fs.Bool("admin", false, "grant the admin flag")
	passFlag := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("missing required flag: -id")
	}

	pass := *passFlag
	if pass == "" {
		var err error
		if pass, err = promptPassword(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(pass) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := ledger.RegisterUser(ctx, *id, *admin, *username, pass); err != nil {
		return err
	}
	fmt.Printf("User %d registered\n", *id)
	return nil
}

func runAdd(ctx context.Context, ledger *services.LedgerService, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	id := fs.Int64("id", 0, "owner account id")
	user := fs.String("user", "", "owner username (alternative to -id)")
	amountStr := fs.String("amount", "", "expense amount, e.g. 12.50 (required)")
	category := fs.String("category", "", "category codename or label text (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *amountStr == "" || *category == "" {
		return fmt.Errorf("missing required flags: -amount and -category")
	}

	amount, err := core.ParseAmount(*amountStr)
	if err != nil {
		return fmt.Errorf("amount %q: %w", *amountStr, err)
	}

	codename, err := ledger.ResolveCategory(ctx, *category)
	if err != nil {
		return fmt.Errorf("category %q: %w", *category, err)
	}

	owner := core.OwnerRef{ID: *id, Username: *user}
	ref, err := ledger.RecordExpense(ctx, owner, amount, codename)
	if err != nil {
		return err
	}

	if *id != 0 {
		if _, err := ledger.TouchActivity(ctx, *id); err != nil {
			return err
		}
	}

	label, err := ledger.CategoryLabel(ctx, codename)
	if err != nil {
		label = codename
	}
	fmt.Printf("Recorded %.2f in %s (ref %d)\n", amount, label, ref)
	return nil
}

func runReport(ctx context.Context, ledger *services.LedgerService, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	id := fs.Int64("id", 0, "owner account id")
	user := fs.String("user", "", "owner username (alternative to -id)")
	windowStr := fs.String("window", "all", "time window: all, month, week or day")
	category := fs.String("category", "", "restrict to one category (codename or label text)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	window, err := core.ParseWindow(*windowStr)
	if err != nil {
		return err
	}

	filter := ""
	if *category != "" {
		if filter, err = ledger.ResolveCategory(ctx, *category); err != nil {
			return fmt.Errorf("category %q: %w", *category, err)
		}
	}

	owner := core.OwnerRef{ID: *id, Username: *user}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	empty := true
	for entry, err := range ledger.SumExpenses(ctx, owner, window, filter) {
		if err != nil {
			return err
		}
		empty = false
		fmt.Fprintf(tw, "%s\t%.2f\n", entry.Category, entry.Amount)
	}
	if empty {
		fmt.Println("No expenses in this window")
		return nil
	}
	return tw.Flush()
}

func runCategories(ctx context.Context, ledger *services.LedgerService, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cats, err := ledger.Categories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\n", c.Codename, c.Name)
	}
	return tw.Flush()
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	// Piped stdin (tests, scripts)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", fmt.Errorf("read password: empty input")
	}
	return strings.TrimSpace(sc.Text()), nil
}
