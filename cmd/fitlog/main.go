package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/cli/activities"
	"github.com/julianstephens/fitlog/internal/cli/backups"
	"github.com/julianstephens/fitlog/internal/cli/profiles"
	"github.com/julianstephens/fitlog/internal/cli/syncs"
	"github.com/julianstephens/fitlog/internal/cli/system"
	"github.com/julianstephens/fitlog/internal/config"
	"github.com/julianstephens/fitlog/internal/connectivity"
	"github.com/julianstephens/fitlog/internal/constants"
	fiterrors "github.com/julianstephens/fitlog/internal/errors"
	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/remote/postgres"
	"github.com/julianstephens/fitlog/internal/storage/sqlite"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Configuration directory." type:"path" default:"${config_dir}" env:"FITLOG_CONFIG_DIR"`
	User      string `help:"User id (defaults to user_id from config.yaml)." short:"u"`
	Remote    string `help:"PostgreSQL connection string without a password. Store passwords with 'fitlog keyring set'."`
	Offline   bool   `help:"Do not contact the remote; changes stay queued."`
	Debug     bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd          `cmd:"" help:"Initialize local storage."`
	Meal      activities.MealCmd      `cmd:"" help:"Log a meal."`
	Workout   activities.WorkoutCmd   `cmd:"" help:"Log a workout."`
	Water     activities.WaterCmd     `cmd:"" help:"Add glasses of water."`
	Sleep     activities.SleepCmd     `cmd:"" help:"Add sleep minutes."`
	Today     activities.TodayCmd     `cmd:"" help:"Show today's progress." default:"1"`
	Dashboard activities.DashboardCmd `cmd:"" help:"Open the interactive dashboard."`
	Profile   struct {
		Show profiles.ShowCmd `cmd:"" help:"Show the local profile." default:"1"`
		Edit profiles.EditCmd `cmd:"" help:"Edit the profile."`
		Pull profiles.PullCmd `cmd:"" help:"Replace the local profile with the remote one."`
	} `cmd:"" help:"Manage your profile."`
	Sync struct {
		Run    syncs.RunCmd    `cmd:"" help:"Push queued changes and pull the profile." default:"1"`
		Status syncs.StatusCmd `cmd:"" help:"Show queued changes and remote state."`
		Watch  syncs.WatchCmd  `cmd:"" help:"Keep syncing until interrupted."`
	} `cmd:"" help:"Synchronize with the remote backend."`
	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage local database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the remote connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string, password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage remote credentials in the OS keyring."`
	RemoteCmd struct {
		Migrate system.RemoteMigrateCmd `cmd:"" help:"Create or upgrade the remote schema."`
		Check   system.RemoteCheckCmd   `cmd:"" help:"Check the remote connection and schema."`
	} `cmd:"" name:"remote" help:"Manage the remote backend."`
	Validate system.ValidateCmd `cmd:"" help:"Check today's data and the sync queue for problems."`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Offline-first fitness tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		fiterrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}
	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, ConfigDir: CLI.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store := sqlite.NewStore(cfg.DatabasePath)
	if needsStore(kctx.Command()) {
		if err := store.Load(); err != nil {
			fiterrors.Fatal(err)
		}
	}

	opts := cli.Options{
		ConfigDir: CLI.ConfigDir,
		User:      CLI.User,
		Offline:   CLI.Offline,
	}
	if !CLI.Offline {
		opts.Remote, opts.Probe, err = openRemote(cfg, CLI.Remote)
		if err != nil {
			fiterrors.Fatal(err)
		}
	}

	appCtx := cli.New(cfg, store, opts)
	ctx, cancel := context.WithCancel(context.Background())
	appCtx.Start(ctx)

	runErr := kctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("Failed to close cleanly", "error", err)
	}
	cancel()

	for _, err := range appCtx.SyncFailures() {
		fmt.Fprintln(os.Stderr, cli.Warning("saved locally, sync deferred: %v", err))
	}
	fiterrors.Fatal(runErr)
}

// needsStore reports whether command runs against an initialized local
// database.
func needsStore(command string) bool {
	for _, prefix := range []string{"init", "keyring", "remote"} {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

// openRemote resolves the backend connection. Without one fitlog runs
// offline and queues everything.
func openRemote(cfg *config.Config, flag string) (*postgres.Store, connectivity.Probe, error) {
	connStr, source, err := cfg.ResolveConnection(flag)
	if errors.Is(err, config.ErrNoConnection) {
		logger.Debug("No remote configured, running offline")
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	store := postgres.New(connStr)
	if err := store.Connect(); err != nil {
		return nil, nil, err
	}
	addr := cfg.ProbeTarget(connStr)
	logger.Debug("Using remote backend", "source", source, "probe", addr)
	if addr == "" {
		// Unix sockets have no address to dial; every pass tries the backend.
		return store, nil, nil
	}
	return store, connectivity.DialProbe{Address: addr, Timeout: cfg.Remote.ProbeTimeout}, nil
}
