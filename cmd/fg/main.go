package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fitgap/internal/catalog"
	"fitgap/internal/config"
	"fitgap/internal/db"
	"fitgap/internal/domain"
	"fitgap/internal/engine"
	"fitgap/internal/llm"
	"fitgap/internal/migrate"
	"fitgap/internal/repo"
	"fitgap/internal/server"
	fitgapsdk "fitgap/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "fg",
	Short: "Fitgap CLI",
	Long: `Fitgap runs requirements discovery and fit-gap analysis for ERP engagements.
Capture business requirements (by hand, from transcripts, or through a guided
interview), classify them against the reference process catalogue, and walk
them through SME and process-owner sign-off. The workspace is a .fitgap
directory holding only the database; settings live in fitgap.yml next to it.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FITGAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("analyst", "local-analyst", "analyst identifier")
	rootCmd.PersistentFlags().StringP("engagement", "e", "", "engagement id (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("analyst", rootCmd.PersistentFlags().Lookup("analyst"))
	_ = viper.BindPFlag("engagement", rootCmd.PersistentFlags().Lookup("engagement"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(requirementCmd())
	rootCmd.AddCommand(engagementCmd())
	rootCmd.AddCommand(analyseCmd())
	rootCmd.AddCommand(catalogueCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(usageCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <engagement-id>",
		Short: "Create a workspace with a default fitgap.yml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(args[0])), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s for engagement %s\n", path, args[0])
			return nil
		},
	}
	return cmd
}

func requirementCmd() *cobra.Command {
	req := &cobra.Command{Use: "requirement", Short: "Manage requirements"}
	req.AddCommand(requirementCreateCmd())
	req.AddCommand(requirementListCmd())
	req.AddCommand(requirementShowCmd())
	req.AddCommand(requirementSignOffCmd())
	req.AddCommand(requirementTraceCmd())
	req.AddCommand(requirementExtractCmd())
	req.AddCommand(requirementTemplatesCmd())
	return req
}

func requirementCreateCmd() *cobra.Command {
	var title, description, stakeholder, process, priority string
	var tags []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				req := domain.Requirement{
					EngagementID: engagementID(cfg),
					Title:        title,
					Description:  description,
					Tags:         tags,
					Stakeholder:  stakeholder,
					Priority:     priority,
				}
				if process != "" {
					req.BusinessProcess = &process
				}
				created, err := e.CreateRequirement(ctx, req, viper.GetString("analyst"))
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringArrayVar(&tags, "tag", []string{}, "tag (repeatable)")
	cmd.Flags().StringVar(&stakeholder, "stakeholder", "", "stakeholder name")
	cmd.Flags().StringVar(&process, "process", "", "business process")
	cmd.Flags().StringVar(&priority, "priority", "", "Must-Have, Should-Have or Nice-to-Have")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func requirementListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requirements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				reqs, err := e.ListRequirements(ctx, engagementID(cfg))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reqs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Sign-off", "Priority", "Tags"})
				for _, r := range reqs {
					tw.AppendRow(table.Row{r.ReqID, r.Title, r.Status, r.SignOffStatus, r.Priority, strings.Join(r.Tags, ",")})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func requirementShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <req-id>",
		Short: "Show a requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				req, err := e.GetRequirement(ctx, engagementID(cfg), args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(req)
			})
		},
	}
	return cmd
}

func requirementSignOffCmd() *cobra.Command {
	var level, signedBy string
	cmd := &cobra.Command{
		Use:   "sign-off <req-id>",
		Short: "Advance a requirement through the sign-off chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				by := signedBy
				if by == "" {
					by = viper.GetString("analyst")
				}
				req, err := e.SignOff(ctx, engagementID(cfg), args[0], level, by)
				if err != nil {
					return err
				}
				return printJSONOrTable(req)
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "sme or owner")
	cmd.Flags().StringVar(&signedBy, "signed-by", "", "signer (defaults to --analyst)")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func requirementTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <req-id>",
		Short: "Trace a requirement back to its origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.Traceability(ctx, engagementID(cfg), args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func requirementExtractCmd() *cobra.Command {
	var file, stakeholder string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract requirements from a transcript file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.ExtractFromTranscript(ctx, engine.ExtractInput{
					EngagementID: engagementID(cfg),
					Stakeholder:  stakeholder,
					Transcript:   string(data),
					Actor:        viper.GetString("analyst"),
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "transcript file path")
	cmd.Flags().StringVar(&stakeholder, "stakeholder", "", "stakeholder name")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func requirementTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates <domain>",
		Short: "Show starter requirements for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpls, err := engine.Templates(args[0])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(tpls)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Title", "Process", "Priority", "Tags"})
			for _, t := range tpls {
				tw.AppendRow(table.Row{t.Title, t.BusinessProcess, t.Priority, strings.Join(t.Tags, ",")})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func engagementCmd() *cobra.Command {
	eng := &cobra.Command{Use: "engagement", Short: "Engagement-level views and actions"}
	eng.AddCommand(engagementSummaryCmd())
	eng.AddCommand(engagementAnalyseAllCmd())
	eng.AddCommand(engagementMirrorCmd())
	eng.AddCommand(engagementSignOffStatusCmd())
	eng.AddCommand(engagementKPICmd())
	return eng
}

func engagementSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Engagement dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.Summary(ctx, engagementID(cfg))
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func engagementAnalyseAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyse-all",
		Short: "Classify every open requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.AnalyseAll(ctx, engagementID(cfg), viper.GetString("analyst"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Top match", "Confidence"})
				for _, r := range out.Results {
					tw.AppendRow(table.Row{r.ReqID, r.Title, r.TopMatchName, r.TopConfidence})
				}
				tw.Render()
				fmt.Printf("processed %d\n", out.Processed)
				return nil
			})
		},
	}
	return cmd
}

func engagementMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process-mirror",
		Short: "Requirements grouped by tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.ProcessMirror(ctx, engagementID(cfg))
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func engagementSignOffStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-off-status",
		Short: "Sign-off progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.SignOffStatus(ctx, engagementID(cfg))
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func engagementKPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kpi-summary",
		Short: "KPI-carrying requirements by process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.KPISummary(ctx, engagementID(cfg))
				if err != nil {
					return err
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func analyseCmd() *cobra.Command {
	var description, reqID, category string
	var limit int
	cmd := &cobra.Command{
		Use:   "analyse",
		Short: "Classify a process description or stored requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				out, err := e.Classify(ctx, engine.ClassifyInput{
					EngagementID: engagementID(cfg),
					Description:  description,
					ReqID:        reqID,
					Limit:        limit,
					Category:     category,
					Actor:        viper.GetString("analyst"),
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(out.Result)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Category", "Confidence", "Rationale"})
				for _, m := range out.Result.Matches {
					tw.AppendRow(table.Row{m.ID, m.Name, m.Category, m.Confidence, m.Rationale})
				}
				tw.Render()
				if !out.Saved {
					fmt.Println("warning: result was not persisted")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "process description")
	cmd.Flags().StringVar(&reqID, "req", "", "stored requirement id")
	cmd.Flags().IntVar(&limit, "limit", 0, "max matches (default 5)")
	cmd.Flags().StringVar(&category, "category", "", "catalogue category filter")
	return cmd
}

func catalogueCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "List the reference catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			items := cat.FilterCategory(category)
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Category", "Group"})
			for _, it := range items {
				tw.AppendRow(table.Row{it.ID, it.Name, it.Category, it.Group})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	return cmd
}

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	cmd.AddCommand(apikeyCreateCmd())
	cmd.AddCommand(apikeyListCmd())
	cmd.AddCommand(apikeyDeleteCmd())
	return cmd
}

func apikeyCreateCmd() *cobra.Command {
	var analyst, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key (the secret is printed once)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if analyst == "" {
				analyst = viper.GetString("analyst")
			}
			raw := make([]byte, 24)
			if _, err := rand.Read(raw); err != nil {
				return err
			}
			secret := "fg_" + hex.EncodeToString(raw)
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				key := domain.APIKey{
					ID:        uuid.New().String(),
					AnalystID: analyst,
					Name:      name,
					KeyHash:   repo.HashAPIKey(secret),
				}
				if err := r.InsertAPIKey(ctx, key); err != nil {
					return err
				}
				fmt.Printf("id: %s\nkey: %s\n", key.ID, secret)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&analyst, "for", "", "analyst id (defaults to --analyst)")
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func apikeyListCmd() *cobra.Command {
	var analyst string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				keys, err := r.ListAPIKeys(ctx, analyst)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(keys)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Analyst", "Name", "Created"})
				for _, k := range keys {
					tw.AppendRow(table.Row{k.ID, k.AnalystID, k.Name, k.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&analyst, "for", "", "filter by analyst id")
	return cmd
}

func apikeyDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteAPIKey(ctx, args[0])
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail engagement events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				evts, err := e.Events.Tail(ctx, engagementID(cfg), n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Entity", "Actor"})
				for _, evt := range evts {
					tw.AppendRow(table.Row{evt.TS, evt.Type, evt.EntityID, evt.ActorID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func usageCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show provider usage of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := fitgapsdk.New(serverURL, viper.GetString("engagement"))
			u, err := client.Usage(cmd.Context())
			if err != nil {
				return err
			}
			return printJSONOrTable(u)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8742", "server base URL")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var requireAuth bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if cfg == nil {
				cfg = &config.Config{}
				cfg.Provider.APIKey = os.Getenv("FITGAP_API_KEY")
			}
			e, meter, err := buildEngine(conn, cfg)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Addr()
			}
			handler, err := server.New(server.Config{
				Engine:   e,
				Meter:    meter,
				Cost:     cfg.EstimatedCost,
				BasePath: basePath,
				Auth: server.AuthConfig{
					JWTSecret: cfg.Server.JWTSecret,
					Require:   requireAuth,
				},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving fitgap API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	cmd.Flags().BoolVar(&requireAuth, "require-auth", false, "reject unauthenticated requests")
	return cmd
}

// --- helpers ---

func buildEngine(conn *sql.DB, cfg *config.Config) (engine.Engine, *llm.Metered, error) {
	cat, err := catalog.Load()
	if err != nil {
		return engine.Engine{}, nil, err
	}
	var provider llm.Provider
	if cfg.Provider.APIKey == "" {
		provider = llm.Unconfigured()
	} else {
		provider, err = llm.New(cfg.Provider)
		if err != nil {
			return engine.Engine{}, nil, err
		}
	}
	meter := llm.NewMetered(provider)
	log, err := zap.NewProduction()
	if err != nil {
		return engine.Engine{}, nil, err
	}
	return engine.New(conn, cat, meter, log), meter, nil
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine, *config.Config) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &config.Config{}
		cfg.Provider.APIKey = os.Getenv("FITGAP_API_KEY")
	}
	e, _, err := buildEngine(conn, cfg)
	if err != nil {
		return err
	}
	return fn(ctx, e, cfg)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func engagementID(cfg *config.Config) string {
	if id := strings.TrimSpace(viper.GetString("engagement")); id != "" {
		return id
	}
	return cfg.Engagement.ID
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
