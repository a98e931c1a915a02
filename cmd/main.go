package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/config"
	"github.com/shanehull/earningswatch/internal/logging"
)

var (
	configPath = flag.String("config", "", "(-c) Path to a YAML config file (default: <home>/config.yaml)")
	homeDir    = flag.String("home", "", "Data directory for the watchlist, PDFs and charts")
	verbose    = flag.Bool("verbose", false, "(-v) Enable debug logging")

	smtpServer = flag.String("smtp-server", "", "SMTP server address (default: smtp.gmail.com)")
	smtpPort   = flag.Int("smtp-port", 0, "SMTP server port (default: 587)")
	smtpUser   = flag.String("smtp-user", "", "SMTP username (email address)")
	smtpPass   = flag.String("smtp-pass", "", "SMTP password or App Password")
	toEmail    = flag.String("to-email", "", "Recipient email address")
	fromEmail  = flag.String("from-email", "", "Sender email address (default: smtp-user)")
)

var commands = []struct {
	name, usage string
}{
	{"add", "add -ticker T [-ir-url URL]   Track a ticker and resolve its earnings date"},
	{"refresh", "refresh [-ticker T]           Re-resolve one ticker, or all of them"},
	{"list", "list [-json] [-color]         Show the watchlist ordered by earnings date"},
	{"day", "day [-date YYYY-MM-DD]        Show companies reporting on a day (default: today)"},
	{"pdf", "pdf -ticker T                 Download the latest earnings PDF and chart its words"},
	{"watch", "watch [-once]                 Announce companies reporting today"},
}

func init() {
	flag.StringVar(configPath, "c", "", "(-c) Path to a YAML config file (shorthand)")
	flag.BoolVar(verbose, "v", false, "(-v) Enable debug logging (shorthand)")

	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s:\n", config.AppName)
		fmt.Printf("  %s [flags] <command> [command flags]\n\nCommands:\n", config.AppName)
		for _, c := range commands {
			fmt.Printf("  %s\n", c.usage)
		}
		fmt.Println("\nFlags:")

		order := []string{
			"config",
			"home",
			"verbose",
			"smtp-server",
			"smtp-port",
			"smtp-user",
			"smtp-pass",
			"to-email",
			"from-email",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(*verbose)
	if err != nil {
		fmt.Printf("Fatal error setting up logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Fatal error loading config: %v\n", err)
		os.Exit(1)
	}

	app, err := newApp(cfg, logger)
	if err != nil {
		fmt.Printf("Fatal error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.run(ctx, args[0], args[1:])
	stop()
	_ = logger.Sync()

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Debug("Command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the command-line flags over config.Load.
func loadConfig() (config.Config, error) {
	if *homeDir != "" {
		if err := os.Setenv("EARNINGSWATCH_HOME", *homeDir); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}

	derivedFrom := cfg.Email.FromEmail == cfg.Email.SMTPUser

	if *smtpServer != "" {
		cfg.Email.SMTPServer = *smtpServer
	}
	if *smtpPort != 0 {
		cfg.Email.SMTPPort = *smtpPort
	}
	if *smtpUser != "" {
		cfg.Email.SMTPUser = *smtpUser
		if derivedFrom {
			cfg.Email.FromEmail = ""
		}
	}
	if *smtpPass != "" {
		cfg.Email.SMTPPass = *smtpPass
	}
	if *toEmail != "" {
		cfg.Email.ToEmail = *toEmail
	}
	if *fromEmail != "" {
		cfg.Email.FromEmail = *fromEmail
	}

	return cfg, cfg.Validate()
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}
