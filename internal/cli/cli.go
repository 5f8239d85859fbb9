package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/bikeshop/internal/app"
	"github.com/Additional-Code/bikeshop/internal/migration"
	"github.com/Additional-Code/bikeshop/internal/seeder"
	"github.com/Additional-Code/bikeshop/internal/service/inventory"
)

// NewRootCommand builds the root bikeshop CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bikeshop",
		Short:         "Bike shop service and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newStockCmd())
	root.AddCommand(newWorkerCmd())

	return root
}

// Execute runs the bikeshop CLI until it finishes or receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			withGRPC, _ := cmd.Flags().GetBool("grpc")
			graph := app.Module
			if withGRPC {
				graph = app.GRPC
			}
			return serve(cmd.Context(), graph)
		},
	}
	cmd.Flags().Bool("grpc", false, "Also serve the gRPC health service")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var mig *migration.Migrator
			opts := fx.Options(app.Core, migration.Module, fx.Populate(&mig))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := mig.Up(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			all, _ := cmd.Flags().GetBool("all")
			var mig *migration.Migrator
			opts := fx.Options(app.Core, migration.Module, fx.Populate(&mig))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := mig.Down(ctx, steps, all); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migration steps to rollback")
	downCmd.Flags().Bool("all", false, "Rollback all applied migrations")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed parts, a basket and sample bikes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *seeder.Seeder
			opts := fx.Options(app.Core, seeder.Module, fx.Populate(&seed))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := seed.Shop(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed data applied")
				return nil
			})
		},
	}
}

func newStockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect and replenish part stock",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show every part with its quantity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *inventory.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				return listStock(ctx, cmd.OutOrStdout(), svc)
			})
		},
	}

	restockCmd := &cobra.Command{
		Use:   "restock",
		Short: "Add units to one part",
		RunE: func(cmd *cobra.Command, args []string) error {
			part, _ := cmd.Flags().GetString("part")
			id, _ := cmd.Flags().GetInt64("id")
			units, _ := cmd.Flags().GetInt("units")

			var svc *inventory.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				return restock(ctx, cmd.OutOrStdout(), svc, inventory.RestockInput{Part: part, ID: id, Units: units})
			})
		},
	}
	restockCmd.Flags().String("part", "", "Part kind: frame, seat, tire or basket")
	restockCmd.Flags().Int64("id", 0, "Part row id")
	restockCmd.Flags().Int("units", 0, "Units to add")
	_ = restockCmd.MarkFlagRequired("part")
	_ = restockCmd.MarkFlagRequired("id")
	_ = restockCmd.MarkFlagRequired("units")

	cmd.AddCommand(listCmd, restockCmd)
	return cmd
}

// listStock prints one tab-aligned row per part row.
func listStock(ctx context.Context, out io.Writer, svc *inventory.Service) error {
	levels, err := svc.Levels(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PART\tID\tNAME\tQUANTITY")
	for i := range levels.Frames {
		f := &levels.Frames[i]
		fmt.Fprintf(w, "frame\t%d\t%s\t%d\n", f.ID, f, f.Quantity)
	}
	for i := range levels.Seats {
		s := &levels.Seats[i]
		fmt.Fprintf(w, "seat\t%d\t%s\t%d\n", s.ID, s, s.Quantity)
	}
	for i := range levels.Tires {
		t := &levels.Tires[i]
		fmt.Fprintf(w, "tire\t%d\t%s\t%d\n", t.ID, t, t.Quantity)
	}
	for i := range levels.Baskets {
		b := &levels.Baskets[i]
		fmt.Fprintf(w, "basket\t%d\t%s\t%d\n", b.ID, b, b.Quantity)
	}
	return w.Flush()
}

func restock(ctx context.Context, out io.Writer, svc *inventory.Service, input inventory.RestockInput) error {
	quantity, err := svc.Restock(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d now at %d\n", input.Part, input.ID, quantity)
	return nil
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage background workers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run worker engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), app.Worker)
		},
	})
	return cmd
}

// serve runs a long-lived application until ctx is cancelled.
func serve(ctx context.Context, opts fx.Option) error {
	application := fx.New(opts)
	if err := application.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return application.Stop(stopCtx)
}

func runWithApp(ctx context.Context, opts fx.Option, fn func(context.Context) error) error {
	application := fx.New(opts, fx.NopLogger)
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()
	return fn(ctx)
}
