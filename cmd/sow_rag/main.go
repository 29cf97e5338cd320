package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"sow_rag/internal/app"
	"sow_rag/internal/compliance"
	"sow_rag/internal/config"
	"sow_rag/internal/logger"
	"sow_rag/internal/rag"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "sow_rag",
		Usage: "index SOW documents, search them and review drafts for compliance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Usage:   "data directory holding historical_sows/ and product_kb/",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			addCommand(),
			clearCommand(),
			searchCommand(),
			reviewCommand(),
			requirementsCommand(),
			statusCommand(),
			shellCommand(),
		},
	}
}

// withApp loads configuration, builds the App and runs fn with it.
func withApp(ctx context.Context, cmd *cli.Command, fn func(context.Context, *app.App) error) error {
	cfg := config.Config{}
	if err := config.Init(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dir := cmd.String("data"); dir != "" {
		cfg.DataDir = dir
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	log.Debug("configuration loaded", "data_dir", cfg.DataDir, "store", cfg.VectorStore, "embedder", cfg.EmbedProvider)

	a, err := app.New(ctx, &cfg, app.WithLogger(log))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "rebuild the collection from the data directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.IndexCorpus(ctx)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(os.Stdout, summary)
				}
				fmt.Printf("✅ Indexing complete\n   Collection: %s\n   Historical SOWs: %d\n   Product documents: %d\n   Chunks: %d\n",
					summary.Collection, summary.HistoricalSOWs, summary.ProductDocs, summary.Chunks)
				return nil
			})
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "index one document without clearing the collection",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringMapFlag{
				Name:  "meta",
				Usage: "metadata key=value, repeatable",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("add needs a file path", 2)
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.AddDocument(ctx, path, cmd.StringMap("meta"))
				if err != nil {
					return err
				}
				fmt.Printf("indexed %s: %d chunks\n", path, n)
				return nil
			})
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "delete every indexed chunk",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				return a.Clear(ctx)
			})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "semantic search over the indexed corpus",
		Commands: []*cli.Command{
			{
				Name:      "sows",
				Usage:     "search historical SOWs",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "client", Usage: "client id filter"},
					&cli.StringFlag{Name: "product", Usage: "product filter"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := cmd.Args().First()
					if query == "" {
						return cli.Exit("search sows needs a query", 2)
					}
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						excerpts, err := a.SearchHistoricalSOWs(ctx, query, cmd.String("client"), cmd.String("product"))
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(os.Stdout, excerpts)
						}
						for i, e := range excerpts {
							fmt.Printf("%d. %s [%s] client=%s product=%s (distance: %.3f)\n%s\n\n",
								i+1, e.Source, e.Section, e.Client, e.Product, e.RelevanceScore, e.Content)
						}
						return nil
					})
				},
			},
			{
				Name:      "product",
				Usage:     "look up a product in the catalog or knowledge base",
				ArgsUsage: "PRODUCT",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					product := cmd.Args().First()
					if product == "" {
						return cli.Exit("search product needs a product name", 2)
					}
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						info, err := a.SearchProductKB(ctx, product)
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(os.Stdout, info)
						}
						fmt.Printf("# %s\n\n%s\n\nSources: %v\n", info.Product, info.Content, info.Sources)
						return nil
					})
				},
			},
			{
				Name:      "client",
				Usage:     "look up a client in the CRM and summarise its opportunities",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return cli.Exit("search client needs a client name or id", 2)
					}
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						brief, err := a.ClientBrief(name)
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(os.Stdout, brief)
						}
						fmt.Print(app.RenderBrief(brief))
						return nil
					})
				},
			},
			{
				Name:      "all",
				Usage:     "search every indexed chunk",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 5, Usage: "number of results"},
					&cli.StringMapFlag{Name: "filter", Usage: "metadata key=value, repeatable"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := cmd.Args().First()
					if query == "" {
						return cli.Exit("search all needs a query", 2)
					}
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						results, err := a.Search(ctx, query, cmd.Int("n"), cmd.StringMap("filter"))
						if err != nil {
							return err
						}
						if cmd.Bool("json") {
							return printJSON(os.Stdout, results)
						}
						fmt.Print(rag.FormatContext(results, 0))
						return nil
					})
				},
			},
		},
	}
}

func reviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "check a SOW draft against the compliance rules",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "product", Usage: "product the SOW covers"},
			&cli.StringFlag{Name: "tier", Usage: "client compliance tier (HIGH, MEDIUM, LOW)"},
			&cli.StringFlag{Name: "client", Usage: "take the tier from this client's CRM record"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the markdown report to this file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("review needs a file path", 2)
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				if out := cmd.String("output"); out != "" {
					a.SetOutputPath(out)
				}

				tier := cmd.String("tier")
				if client := cmd.String("client"); client != "" && tier == "" {
					t, err := a.ClientTier(client)
					if err != nil {
						return err
					}
					tier = t
				}

				rv, err := a.ReviewFile(ctx, path, cmd.String("product"), tier)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(os.Stdout, rv)
				}
				fmt.Print(app.RenderReview(path, rv))
				if rv.Status == compliance.StatusFail {
					return cli.Exit("", 3)
				}
				return nil
			})
		},
	}
}

func requirementsCommand() *cli.Command {
	return &cli.Command{
		Name:      "requirements",
		Usage:     "show the compliance rules for a client tier",
		ArgsUsage: "TIER",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tier := cmd.Args().First()
			if tier == "" {
				return cli.Exit("requirements needs a tier", 2)
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				reqs := a.Requirements(tier)
				if reqs.Error != "" {
					return fmt.Errorf("%s", reqs.Error)
				}
				return printJSON(os.Stdout, reqs)
			})
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show collection size and last indexing run",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				st, err := a.Status(ctx)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(os.Stdout, st)
				}
				fmt.Printf("collection %s: %d chunks from %d files", st.Collection, st.Chunks, st.Files)
				if !st.IndexedAt.IsZero() {
					fmt.Printf(" (indexed %s)", st.IndexedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Println()
				return nil
			})
		},
	}
}

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive review and search",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx)
			})
		},
	}
}
