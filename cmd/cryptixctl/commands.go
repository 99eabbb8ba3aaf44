package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/config"
	"github.com/robalobadob/cryptix/internal/game"
	"github.com/robalobadob/cryptix/internal/store"
	"github.com/robalobadob/cryptix/internal/words"
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("usage: cryptixctl [-db path] <init-db|seed-words|create-admin|list-players|report-daily|report-user|purge-sessions> [flags]")

// env carries what every command needs.
type env struct {
	cfg config.Config
	loc *time.Location
	st  *store.SQLite
	out io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"init-db":        cmdInitDB,
	"seed-words":     cmdSeedWords,
	"create-admin":   cmdCreateAdmin,
	"list-players":   cmdListPlayers,
	"report-daily":   cmdReportDaily,
	"report-user":    cmdReportUser,
	"purge-sessions": cmdPurgeSessions,
}

// run parses the global flags, opens the store and dispatches to a command.
func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("cryptixctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n%w", rest[0], errUsage)
	}

	loc, err := cfg.QuotaLocation()
	if err != nil {
		return err
	}
	st, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return cmd(ctx, &env{cfg: cfg, loc: loc, st: st, out: out}, rest[1:])
}

func cmdInitDB(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("init-db", flag.ContinueOnError)
	withWords := fs.Bool("with-words", false, "seed the word corpus too")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pterm.Success.WithWriter(e.out).Printfln("Database ready at %s", e.cfg.DBPath)
	if *withWords {
		return seed(ctx, e, false)
	}
	return nil
}

func cmdSeedWords(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("seed-words", flag.ContinueOnError)
	force := fs.Bool("force", false, "delete words no game uses before seeding")
	file := fs.String("file", e.cfg.WordsFile, "word list file (default: embedded list)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e.cfg.WordsFile = *file
	return seed(ctx, e, *force)
}

func seed(ctx context.Context, e *env, force bool) error {
	list, err := words.Load(e.cfg.WordsFile, e.cfg.Rules().WordLength)
	if err != nil {
		return err
	}
	res, err := words.Seed(ctx, e.st, list, force)
	if err != nil {
		return err
	}
	pterm.Success.WithWriter(e.out).Printfln("Seeded words: %d inserted, %d already present, %d removed",
		res.Inserted, res.Existing, res.Removed)
	return nil
}

func cmdCreateAdmin(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cryptixctl create-admin USERNAME PASSWORD")
	}
	u, err := auth.NewService(e.st).Register(ctx, args[0], args[1], auth.RoleAdmin)
	if err != nil {
		return err
	}
	pterm.Success.WithWriter(e.out).Printfln("Admin %s created (%s)", u.Username, u.ID)
	return nil
}

func cmdListPlayers(ctx context.Context, e *env, args []string) error {
	ps, err := e.st.ListPlayers(ctx)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		pterm.Info.WithWriter(e.out).Println("No players yet")
		return nil
	}
	data := pterm.TableData{{"Username", "ID", "Joined", "Games", "Wins"}}
	for _, p := range ps {
		data = append(data, []string{
			p.Username, p.ID, p.CreatedAt.In(e.loc).Format(dateLayout),
			strconv.Itoa(p.Games), strconv.Itoa(p.Wins),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(e.out).WithData(data).Render()
}

func cmdReportDaily(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("report-daily", flag.ContinueOnError)
	date := fs.String("date", "", "day to report, YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	day := time.Now().In(e.loc)
	if *date != "" {
		t, err := time.ParseInLocation(dateLayout, *date, e.loc)
		if err != nil {
			return fmt.Errorf("invalid -date %q: want YYYY-MM-DD", *date)
		}
		day = t
	}
	r, err := e.st.DailyReport(ctx, day, e.loc)
	if err != nil {
		return err
	}
	data := pterm.TableData{
		{"Date", "Players", "Games", "Wins", "Losses"},
		{r.Date, strconv.Itoa(r.PlayersPlayed), strconv.Itoa(r.Games), strconv.Itoa(r.Wins), strconv.Itoa(r.Losses)},
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(e.out).WithData(data).Render()
}

func cmdReportUser(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("report-user", flag.ContinueOnError)
	id := fs.String("id", "", "player id")
	username := fs.String("username", "", "player username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" && *username == "" {
		return errors.New("report-user needs -id or -username")
	}
	if *id == "" {
		u, err := e.st.FindUserByUsername(ctx, *username)
		if err != nil {
			return err
		}
		*id = u.ID
	}

	r, err := e.st.UserReport(ctx, *id, e.loc)
	if err != nil {
		return err
	}
	pterm.Info.WithWriter(e.out).Printfln("Report for %s (%s)", r.Username, r.PlayerID)
	if len(r.Days) == 0 {
		pterm.Info.WithWriter(e.out).Println("No games played")
		return nil
	}

	days := pterm.TableData{{"Date", "Games", "Wins", "Losses", "In progress", "Guesses"}}
	for _, d := range r.Days {
		days = append(days, []string{
			d.Date, strconv.Itoa(d.Games), strconv.Itoa(d.Wins),
			strconv.Itoa(d.Losses), strconv.Itoa(d.InProgress), strconv.Itoa(d.TotalGuesses),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(e.out).WithData(days).Render(); err != nil {
		return err
	}

	games := pterm.TableData{{"Started", "Word", "State", "Guesses"}}
	for _, g := range r.Games {
		games = append(games, []string{
			g.StartedAt.In(e.loc).Format(time.DateTime), g.Word, string(g.State), strings.Join(g.Guesses, " "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(e.out).WithData(games).Render()
}

func cmdPurgeSessions(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	before := fs.String("before", "", "delete sessions started before this day, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *before == "" {
		return errors.New("purge-sessions needs -before")
	}
	day, err := time.ParseInLocation(dateLayout, *before, e.loc)
	if err != nil {
		return fmt.Errorf("invalid -before %q: want YYYY-MM-DD", *before)
	}
	from, _ := game.DayBounds(day, e.loc)
	n, err := e.st.PurgeSessionsBefore(ctx, from)
	if err != nil {
		return err
	}
	pterm.Success.WithWriter(e.out).Printfln("Deleted %d sessions started before %s", n, *before)
	return nil
}
