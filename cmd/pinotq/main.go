package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/pinotconn/connector"
	"github.com/Konsultn-Engineering/pinotconn/logger"
	"github.com/Konsultn-Engineering/pinotconn/rows"
)

type globalFlags struct {
	config   string
	host     string
	port     int
	scheme   string
	database string
	logLevel string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "pinotq",
	Short:         "Run SQL against a Pinot broker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&flags.host, "host", "", "broker host")
	pf.IntVar(&flags.port, "port", 0, "broker port")
	pf.StringVar(&flags.scheme, "scheme", "", "http or https")
	pf.StringVar(&flags.database, "database", "", "database header sent with each query")
	pf.StringVar(&flags.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")

	var (
		format string
		args   []string
	)
	queryCmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Execute a query and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			return runQuery(cmd.Context(), positional[0], args, format)
		},
	}
	queryCmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	queryCmd.Flags().StringArrayVar(&args, "arg", nil, "positional parameter, repeatable")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the broker is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	rootCmd.AddCommand(queryCmd, healthCmd)
}

// connect loads the config from file and PINOT_* variables, then applies flags.
func connect() (*connector.Connection, error) {
	cfg, err := connector.LoadConfig(flags.config, "PINOT")
	if err != nil {
		return nil, err
	}
	if flags.host != "" {
		cfg.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Port = flags.port
	}
	if flags.scheme != "" {
		cfg.Scheme = flags.scheme
	}
	if flags.database != "" {
		cfg.Database = flags.database
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log := logger.Init(cfg.Log)
	return connector.Connect(cfg, connector.WithLogger(log))
}

func runQuery(ctx context.Context, sql string, args []string, format string) error {
	render, err := rendererFor(format)
	if err != nil {
		return err
	}

	conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	cur, err := connector.NewCursor(conn, rows.ListRow)
	if err != nil {
		return err
	}
	defer cur.Close()

	var params any
	if len(args) > 0 {
		params = args
	}
	if _, err := cur.Execute(ctx, sql, params); err != nil {
		return err
	}

	all, err := cur.FetchAll()
	if err != nil {
		return err
	}
	return render(os.Stdout, cur.Description(), all)
}
