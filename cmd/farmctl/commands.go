package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "farmctl",
		Short: "Poultry farm dashboard client",
		Long: `farmctl talks to the farm management backend on behalf of a logged in user.

The session token is kept in a local file (SESSION_TOKEN_PATH, default
~/.config/farmdash/session.toml) so later commands reuse it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.tokenPath, "session-file", "", "session file path (overrides SESSION_TOKEN_PATH)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newValidateCmd(a),
		newFarmsCmd(a),
		newFlocksCmd(a),
		newHealthCmd(a),
		newProductionCmd(a),
		newDashboardCmd(a),
		newReportCmd(a),
	)
	return root
}

// call runs fn through the session and prints its result.
func call[T any](a *app, cmd *cobra.Command, fn func(ctx context.Context, c farmapi.Client) (T, error)) error {
	result, err := session.Call(cmd.Context(), a.session, fn)
	if err != nil {
		return err
	}
	return a.print(result)
}

func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("FARMCTL_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("password required: use --password or FARMCTL_PASSWORD")
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			if _, err := a.session.Login(cmd.Context(), email, pw); err != nil {
				return err
			}
			return a.print(a.session.Snapshot())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or FARMCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var req models.RegisterRequest
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}
			req.Password = pw
			req.PasswordConfirm = pw
			if _, err := a.session.Register(cmd.Context(), req); err != nil {
				return err
			}
			return a.print(a.session.Snapshot())
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&password, "password", "", "account password (or FARMCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			return a.print(a.session.Snapshot())
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session state without contacting the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.print(a.session.Snapshot())
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored token against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Validate(cmd.Context()); err != nil {
				return err
			}
			return a.print(a.session.Snapshot())
		},
	}
}

func newFarmsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "farms", Short: "List and create farms"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List farms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Farm], error) {
				return c.ListFarms(ctx)
			})
		},
	})

	var farm models.Farm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Farm, error) {
				return c.CreateFarm(ctx, farm)
			})
		},
	}
	create.Flags().StringVar(&farm.Name, "name", "", "farm name")
	create.Flags().StringVar(&farm.Location, "location", "", "location")
	create.Flags().StringVar(&farm.Description, "description", "", "description")
	create.Flags().IntVar(&farm.TotalBuildings, "buildings", 1, "number of buildings")
	create.Flags().IntVar(&farm.TotalCapacity, "capacity", 0, "total bird capacity")
	create.Flags().IntVar(&farm.CurrentBirds, "birds", 0, "birds currently housed")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	return cmd
}

func newFlocksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "flocks", Short: "List and create flocks"}

	var farmID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List flocks, optionally for one farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Flock], error) {
				return c.ListFlocks(ctx, farmID)
			})
		},
	}
	list.Flags().Int64Var(&farmID, "farm", 0, "farm id filter")
	cmd.AddCommand(list)

	var flock models.Flock
	var acquired string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a flock",
		RunE: func(cmd *cobra.Command, args []string) error {
			if acquired != "" {
				date, err := models.ParseDate(acquired)
				if err != nil {
					return err
				}
				flock.AcquisitionDate = date
			}
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Flock, error) {
				return c.CreateFlock(ctx, flock)
			})
		},
	}
	create.Flags().StringVar(&flock.Name, "name", "", "flock name")
	create.Flags().StringVar(&flock.Breed, "breed", "", "breed")
	create.Flags().Int64Var(&flock.Farm, "farm", 0, "farm id")
	create.Flags().Int64Var(&flock.Building, "building", 0, "building id")
	create.Flags().IntVar(&flock.InitialCount, "initial", 0, "initial bird count")
	create.Flags().IntVar(&flock.CurrentCount, "current", 0, "current bird count (defaults to initial)")
	create.Flags().IntVar(&flock.AgeWeeks, "age-weeks", 0, "age in weeks")
	create.Flags().StringVar(&acquired, "acquired", "", "acquisition date (YYYY-MM-DD)")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	return cmd
}

func newHealthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "health", Short: "Health records"}

	var flockID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List health records, optionally for one flock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Page[models.HealthRecord], error) {
				return c.ListHealthRecords(ctx, flockID)
			})
		},
	}
	list.Flags().Int64Var(&flockID, "flock", 0, "flock id filter")
	cmd.AddCommand(list)

	return cmd
}

func newProductionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "production", Short: "Production records"}

	var flockID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List production records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (*models.Page[models.ProductionRecord], error) {
				return c.ListProductionRecords(ctx, flockID)
			})
		},
	}
	list.Flags().Int64Var(&flockID, "flock", 0, "flock id filter")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Totals and averages over production records",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.dashboard.Production(cmd.Context(), flockID)
			if err != nil {
				return err
			}
			return a.print(view)
		},
	}
	summary.Flags().Int64Var(&flockID, "flock", 0, "flock id filter")

	cmd.AddCommand(list, summary)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.dashboard.Overview(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(view)
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Backend reports"}

	var pairs []string
	production := &cobra.Command{
		Use:     "production",
		Short:   "Query the production report",
		Example: `  farmctl report production --param flock=2 --param from=2024-01-01 --param to=2024-01-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := farmapi.ParseParams(pairs)
			if err != nil {
				return err
			}
			return call(a, cmd, func(ctx context.Context, c farmapi.Client) (models.ProductionReport, error) {
				return c.ProductionReport(ctx, params)
			})
		},
	}
	production.Flags().StringArrayVar(&pairs, "param", nil, "query parameter as key=value, repeatable, order kept")
	cmd.AddCommand(production)

	return cmd
}
