package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/aroundegypt/internal/aroundegypt"
	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/config"
	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/database"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
	"github.com/mrlokans/aroundegypt/internal/database/settings"
	"github.com/mrlokans/aroundegypt/internal/entities"
	"github.com/mrlokans/aroundegypt/internal/likes"
	"github.com/mrlokans/aroundegypt/internal/logger"
)

const (
	CommandRecent      = "recent"
	CommandRecommended = "recommended"
	CommandSearch      = "search"
	CommandDetails     = "details"
	CommandLike        = "like"
)

var commandHelp = map[string]struct {
	args string
	desc string
}{
	CommandRecent:      {"", "List recent experiences (cached for offline use)"},
	CommandRecommended: {"", "List recommended experiences (cached for offline use)"},
	CommandSearch:      {"<query>", "Search experiences by title"},
	CommandDetails:     {"<id>", "Show a single experience"},
	CommandLike:        {"<id>", "Like an experience"},
}

// IsCatalogCommand reports whether name is one of the one-shot catalog commands.
func IsCatalogCommand(name string) bool {
	_, ok := commandHelp[name]
	return ok
}

// CatalogCommand runs one orchestrator operation against the local cache
// and the AroundEgypt API, then prints the result.
type CatalogCommand struct {
	Name         string
	DatabasePath string
	APIBaseURL   string
	Timeout      time.Duration
	Offline      bool
	JSON         bool
	Verbose      bool
	Arg          string // search query or experience id

	Out io.Writer
}

// NewCatalogCommand creates a command for one of the catalog operations.
func NewCatalogCommand(name string) *CatalogCommand {
	return &CatalogCommand{Name: name, Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *CatalogCommand) ParseFlags(args []string) error {
	help, ok := commandHelp[cmd.Name]
	if !ok {
		return fmt.Errorf("unknown command: %s", cmd.Name)
	}

	cfg := config.NewConfig()
	fs := flag.NewFlagSet(cmd.Name, flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local cache database")
	fs.StringVar(&cmd.APIBaseURL, "api", cfg.API.BaseURL, "AroundEgypt API base URL")
	fs.DurationVar(&cmd.Timeout, "timeout", cfg.API.Timeout, "Request timeout")
	fs.BoolVar(&cmd.Offline, "offline", false, "Act as if there is no network (read from the cache)")
	fs.BoolVar(&cmd.JSON, "json", false, "Print JSON instead of a table")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options] %s\n\n", os.Args[0], cmd.Name, help.args)
		fmt.Fprintf(os.Stderr, "%s.\n\n", help.desc)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if help.args != "" {
		cmd.Arg = strings.TrimSpace(strings.Join(fs.Args(), " "))
		if cmd.Arg == "" {
			fs.Usage()
			return fmt.Errorf("%s requires %s", cmd.Name, help.args)
		}
	}
	return nil
}

// Run executes the command
func (cmd *CatalogCommand) Run() error {
	level := "warn"
	if cmd.Verbose {
		level = "debug"
	}
	log, err := logger.NewLogger("local", level)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewDatabase(cmd.DatabasePath, "silent", log)
	if err != nil {
		return err
	}
	defer db.Close()

	tracker := likes.NewTracker(settings.NewRepository(db.DB))
	orch := catalog.New(
		aroundegypt.NewClient(cmd.APIBaseURL, cmd.Timeout),
		experiences.NewRepository(db.DB, log),
		tracker,
		connectivity.NewStatic(!cmd.Offline),
		log,
	)

	ctx := context.Background()
	switch cmd.Name {
	case CommandRecent:
		orch.LoadRecent(ctx)
		return cmd.printList(orch.Experiences(), orch.Err(), catalog.OpLoadRecent)

	case CommandRecommended:
		orch.LoadRecommended(ctx)
		return cmd.printList(orch.Recommended(), orch.Err(), catalog.OpLoadRecommended)

	case CommandSearch:
		if cmd.Offline {
			// Offline search filters the loaded listing, so load it first.
			orch.LoadRecent(ctx)
			orch.ClearError()
		}
		orch.Search(ctx, cmd.Arg)
		return cmd.printList(orch.SearchResults(), orch.Err(), catalog.OpSearch)

	case CommandDetails:
		item, ok := orch.FetchDetails(ctx, cmd.Arg)
		if !ok {
			return opError(orch.Err(), catalog.OpFetchDetails)
		}
		return cmd.printDetails(item)

	case CommandLike:
		target, ok := orch.FetchDetails(ctx, cmd.Arg)
		if !ok {
			orch.ClearError()
			liked, err := tracker.IsLiked(ctx, cmd.Arg)
			if err != nil {
				return err
			}
			if liked {
				fmt.Fprintf(cmd.Out, "Already liked %s\n", cmd.Arg)
				return nil
			}
			target = catalog.Experience{Experience: entities.Experience{ID: cmd.Arg}}
		}
		if target.IsLiked {
			fmt.Fprintf(cmd.Out, "Already liked %s (%d likes)\n", target.ID, target.LikesNo)
			return nil
		}
		orch.Like(ctx, target)
		if err := opError(orch.Err(), catalog.OpLike); err != nil {
			return err
		}
		if liked, ok := orch.Find(cmd.Arg); ok {
			fmt.Fprintf(cmd.Out, "Liked %s (%d likes)\n", liked.ID, liked.LikesNo)
		} else {
			fmt.Fprintf(cmd.Out, "Liked %s\n", cmd.Arg)
		}
		return nil
	}
	return fmt.Errorf("unknown command: %s", cmd.Name)
}

func (cmd *CatalogCommand) printList(items []catalog.Experience, slot *catalog.Error, op string) error {
	if err := opError(slot, op); err != nil {
		return err
	}
	if cmd.JSON {
		return writeJSON(cmd.Out, items)
	}

	tw := tabwriter.NewWriter(cmd.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tLIKES\tLIKED")
	for _, item := range items {
		city := ""
		if item.City != nil {
			city = item.City.Name
		}
		liked := ""
		if item.IsLiked {
			liked = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.Title, city, item.LikesNo, liked)
	}
	return tw.Flush()
}

func (cmd *CatalogCommand) printDetails(item catalog.Experience) error {
	if cmd.JSON {
		return writeJSON(cmd.Out, item)
	}
	fmt.Fprintf(cmd.Out, "%s\n", item.Title)
	fmt.Fprintf(cmd.Out, "  ID:     %s\n", item.ID)
	if item.City != nil {
		fmt.Fprintf(cmd.Out, "  City:   %s\n", item.City.Name)
	}
	fmt.Fprintf(cmd.Out, "  Views:  %d\n", item.ViewsNo)
	fmt.Fprintf(cmd.Out, "  Likes:  %d", item.LikesNo)
	if item.IsLiked {
		fmt.Fprint(cmd.Out, " (liked)")
	}
	fmt.Fprintln(cmd.Out)
	if item.DetailedDescription != "" {
		fmt.Fprintf(cmd.Out, "\n%s\n", item.DetailedDescription)
	}
	return nil
}

// opError returns the slot error when it was raised by op.
func opError(slot *catalog.Error, op string) error {
	if slot == nil || slot.Op != op {
		return nil
	}
	return fmt.Errorf("%s (%w)", slot.Kind.Message(), slot)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintCommands lists the catalog commands for the top-level usage text.
func PrintCommands(w io.Writer) {
	for _, name := range []string{CommandRecent, CommandRecommended, CommandSearch, CommandDetails, CommandLike} {
		help := commandHelp[name]
		fmt.Fprintf(w, "  %-20s%s\n", strings.TrimSpace(name+" "+help.args), help.desc)
	}
}
