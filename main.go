package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/subradar/internal"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	boa.Cmd{
		Use:   "subradar",
		Short: "Track recurring subscriptions with local reminders",
		Long: "Records recurring payments (price, currency, billing cycle, prepaid balance), " +
			"lists them by upcoming due date, auto-advances billing dates and deducts prepaid " +
			"balances when they come due, and delivers local reminders.",
		SubCmds: []*cobra.Command{
			listCmd(),
			addCmd(),
			editCmd(),
			removeCmd(),
			renewCmd(),
			setCmd(),
			exportCmd(),
			importCmd(),
			watchCmd(),
		},
	}.Run()
}

// openApp wires the store, display config and reminder plan together and
// runs the load-time renewal pass.
func openApp(dataDir string, today internal.Date) (*internal.App, error) {
	if dataDir == "" {
		dataDir = internal.DefaultStoreDir()
	}

	cfg, err := internal.LoadConfigOrDefault(internal.DefaultConfigPath())
	if err != nil {
		return nil, err
	}

	store := &internal.Store{Dir: dataDir}
	plan := &internal.PlanStore{Path: internal.DefaultPlanPath()}
	return internal.LoadApp(store, cfg, plan, today)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

type ListParams struct {
	DataDir string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Search  string `descr:"Case-insensitive name filter" default:""`
	Tags    string `descr:"Comma-separated tag filter" default:""`
	Sort    string `descr:"Sort order" alts:"due,name,price" default:""`
	Json    bool   `descr:"Output JSON instead of a table" default:"false"`
}

func listCmd() *cobra.Command {
	return boa.NewCmdT[ListParams]("list").
		WithShort("List subscriptions sorted by upcoming due date").
		WithRunFunc(func(params *ListParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			opts := internal.OutputOptions{
				Search:    params.Search,
				SortField: params.Sort,
				Today:     today,
			}
			if opts.SortField == "" {
				opts.SortField = app.Config.SortField()
			}
			if params.Tags != "" {
				opts.TagFilter = strings.Split(params.Tags, ",")
			}

			subs := internal.ApplyView(app.Subscriptions, opts, app.Config)
			if params.Json {
				if err := internal.PrintSubscriptionsJSON(os.Stdout, subs, app.Config, today); err != nil {
					fatal(err)
				}
				return
			}
			internal.PrintSubscriptionsTable(os.Stdout, subs, opts, app.Config)
		}).
		ToCobra()
}

type AddParams struct {
	Name     string `descr:"Subscription name" positional:"true"`
	Price    string `descr:"Price per billing cycle, e.g. 9.99"`
	DataDir  string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Currency string `descr:"Currency code (defaults from system locale)" alts:"CNY,USD" default:""`
	Cycle    string `descr:"Billing cycle" alts:"Monthly,Quarterly,Yearly,Custom" default:"Monthly"`
	Every    int    `descr:"Custom cycle duration (with --unit)" default:"0"`
	Unit     string `descr:"Custom cycle unit" alts:"day,week,month,year" default:""`
	Next     string `descr:"Next billing date YYYY-MM-DD (defaults to today)" default:""`
	Start    string `descr:"Start date YYYY-MM-DD (informational)" default:""`
	Balance  string `descr:"Prepaid account balance" default:""`
	Notes    string `descr:"Free-form notes" default:""`
	Image    string `descr:"Path to an image attachment" default:""`
}

func addCmd() *cobra.Command {
	return boa.NewCmdT[AddParams]("add").
		WithShort("Add a subscription").
		WithRunFunc(func(params *AddParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			sub := internal.Subscription{
				Name:            params.Name,
				Notes:           params.Notes,
				Image:           params.Image,
				NextBillingDate: today,
			}

			if sub.Price, err = parseMoney(params.Price); err != nil {
				fatal(err)
			}
			if params.Currency == "" {
				sub.Currency = internal.DefaultCurrency()
			} else if sub.Currency, err = internal.ParseCurrency(params.Currency); err != nil {
				fatal(err)
			}
			sub.Cycle = internal.Cycle{
				Kind:  internal.CycleKind(params.Cycle),
				Every: params.Every,
				Unit:  internal.CycleUnit(params.Unit),
			}
			if params.Next != "" {
				if sub.NextBillingDate, err = internal.ParseDate(params.Next); err != nil {
					fatal(err)
				}
			}
			if params.Start != "" {
				start, err := internal.ParseDate(params.Start)
				if err != nil {
					fatal(err)
				}
				sub.StartDate = &start
			}
			if params.Balance != "" {
				balance, err := parseMoney(params.Balance)
				if err != nil {
					fatal(err)
				}
				sub.SetBalance(balance)
			}

			added, err := app.Add(sub, today)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Added %s (%s, next billing %s)\n",
				added.Name, added.Cycle, added.NextBillingDate)
		}).
		ToCobra()
}

type EditParams struct {
	Query    string `descr:"Subscription id or name" positional:"true"`
	DataDir  string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Name     string `descr:"New name" default:""`
	Price    string `descr:"New price" default:""`
	Currency string `descr:"New currency code" alts:"CNY,USD" default:""`
	Cycle    string `descr:"New billing cycle" alts:"Monthly,Quarterly,Yearly,Custom" default:""`
	Every    int    `descr:"Custom cycle duration (with --unit)" default:"0"`
	Unit     string `descr:"Custom cycle unit" alts:"day,week,month,year" default:""`
	Next     string `descr:"New next billing date YYYY-MM-DD" default:""`
	Balance  string `descr:"New prepaid balance ('-' clears it)" default:""`
	Notes    string `descr:"New notes" default:""`
}

func editCmd() *cobra.Command {
	return boa.NewCmdT[EditParams]("edit").
		WithShort("Edit a subscription").
		WithRunFunc(func(params *EditParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			sub, err := app.Find(params.Query)
			if err != nil {
				fatal(err)
			}

			if params.Name != "" {
				sub.Name = params.Name
			}
			if params.Price != "" {
				if sub.Price, err = parseMoney(params.Price); err != nil {
					fatal(err)
				}
			}
			if params.Currency != "" {
				if sub.Currency, err = internal.ParseCurrency(params.Currency); err != nil {
					fatal(err)
				}
			}
			if params.Cycle != "" {
				sub.Cycle = internal.Cycle{
					Kind:  internal.CycleKind(params.Cycle),
					Every: params.Every,
					Unit:  internal.CycleUnit(params.Unit),
				}
			}
			if params.Next != "" {
				if sub.NextBillingDate, err = internal.ParseDate(params.Next); err != nil {
					fatal(err)
				}
			}
			switch params.Balance {
			case "":
			case "-":
				sub.AccountBalance = nil
			default:
				balance, err := parseMoney(params.Balance)
				if err != nil {
					fatal(err)
				}
				sub.SetBalance(balance)
			}
			if params.Notes != "" {
				sub.Notes = params.Notes
			}

			if err := app.Update(sub, today); err != nil {
				fatal(err)
			}
			fmt.Printf("Updated %s\n", sub.Name)
		}).
		ToCobra()
}

type RemoveParams struct {
	Query   string `descr:"Subscription id or name" positional:"true"`
	DataDir string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
}

func removeCmd() *cobra.Command {
	return boa.NewCmdT[RemoveParams]("rm").
		WithShort("Remove a subscription and cancel its reminders").
		WithRunFunc(func(params *RemoveParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			removed, err := app.Remove(params.Query, today)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Removed %s\n", removed.Name)
		}).
		ToCobra()
}

type RenewParams struct {
	Query   string `descr:"Subscription id or name" positional:"true"`
	DataDir string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
}

func renewCmd() *cobra.Command {
	return boa.NewCmdT[RenewParams]("renew").
		WithShort("Mark a subscription as paid for one cycle").
		WithLong("Advances the next billing date by exactly one cycle, deducting one price " +
			"from the prepaid balance when it covers it.").
		WithRunFunc(func(params *RenewParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			renewed, err := app.RenewNow(params.Query, today)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Renewed %s, next billing %s\n", renewed.Name, renewed.NextBillingDate)
			if balance, ok := renewed.Balance(); ok {
				fmt.Printf("Remaining balance: %s\n",
					internal.FormatterFor(renewed.Currency).Format(balance))
			}
		}).
		ToCobra()
}

type SetParams struct {
	DataDir       string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Notifications string `descr:"Enable or disable reminders" alts:"on,off" default:""`
	Language      string `descr:"UI language" alts:"en,zh" default:""`
	Theme         string `descr:"Theme" alts:"light,dark,auto" default:""`
}

func setCmd() *cobra.Command {
	return boa.NewCmdT[SetParams]("set").
		WithShort("Show or change app settings").
		WithRunFunc(func(params *SetParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			settings := app.Settings
			changed := false
			if params.Notifications != "" {
				settings.NotificationsEnabled = params.Notifications == "on"
				changed = true
			}
			if params.Language != "" {
				settings.Language = internal.Language(params.Language)
				changed = true
			}
			if params.Theme != "" {
				settings.Theme = params.Theme
				changed = true
			}

			if changed {
				if err := app.SaveSettings(settings, today); err != nil {
					fatal(err)
				}
			}

			state := "off"
			if settings.NotificationsEnabled {
				state = "on"
			}
			fmt.Printf("notifications: %s\nlanguage:      %s\ntheme:         %s\n",
				state, settings.Language, settings.Theme)
		}).
		ToCobra()
}

type ExportParams struct {
	Path    string `descr:"Output file path" positional:"true"`
	DataDir string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Format  string `descr:"Output format" alts:"xlsx,json" default:"xlsx"`
}

func exportCmd() *cobra.Command {
	return boa.NewCmdT[ExportParams]("export").
		WithShort("Export subscriptions to an xlsx or JSON file").
		WithRunFunc(func(params *ExportParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			subs := internal.SortByNextBilling(app.Subscriptions)
			switch params.Format {
			case "json":
				err = internal.ExportJSON(params.Path, subs)
			default:
				err = internal.ExportXLSX(params.Path, subs)
			}
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Exported %d subscriptions to %s\n", len(subs), params.Path)
		}).
		ToCobra()
}

type ImportParams struct {
	Path    string `descr:"Input file path" positional:"true"`
	DataDir string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Format  string `descr:"Input format" alts:"simple-json" default:"simple-json"`
}

func importCmd() *cobra.Command {
	return boa.NewCmdT[ImportParams]("import").
		WithShort("Import subscriptions from a file").
		WithRunFunc(func(params *ImportParams) {
			today := internal.Today()
			app, err := openApp(params.DataDir, today)
			if err != nil {
				fatal(err)
			}

			importer, err := internal.GetImporter(params.Format)
			if err != nil {
				fatal(err)
			}
			subs, err := importer.Import(params.Path)
			if err != nil {
				fatal(err)
			}

			count, err := app.Import(subs, today)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Imported %d subscriptions\n", count)
		}).
		ToCobra()
}

type WatchParams struct {
	DataDir  string `descr:"Data directory" env:"SUBRADAR_DATA" default:""`
	Schedule string `descr:"Cron schedule for the daily sweep" default:"0 9 * * *"`
}

func watchCmd() *cobra.Command {
	return boa.NewCmdT[WatchParams]("watch").
		WithShort("Run the reminder daemon").
		WithLong("Sweeps once immediately and then on the cron schedule: applies due renewals, " +
			"persists changes and delivers desktop reminders for due subscriptions.").
		WithRunFunc(func(params *WatchParams) {
			dataDir := params.DataDir
			if dataDir == "" {
				dataDir = internal.DefaultStoreDir()
			}
			cfg, err := internal.LoadConfigOrDefault(internal.DefaultConfigPath())
			if err != nil {
				fatal(err)
			}

			store := &internal.Store{Dir: dataDir}
			plan := &internal.PlanStore{Path: internal.DefaultPlanPath()}
			if err := internal.RunWatch(store, cfg, plan, internal.DesktopNotifier{}, params.Schedule); err != nil {
				fatal(err)
			}
		}).
		ToCobra()
}

func parseMoney(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", s)
	}
	return amount, nil
}
