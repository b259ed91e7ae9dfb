package constants

import "time"

const (
	AppName            = "fitlog"
	DefaultKeyringUser = "remote-connection"
	DefaultConfigDir   = "~/.config/fitlog"
	DefaultConfigFile  = "config.yaml"
	DefaultDBFile      = "fitlog.db"
	Version            = "v0.1.0"

	// DateFormat is the day key used for daily records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "fitlog-"
	BackupFileSuffix = ".db"

	// Sync watcher constants
	WatchLockfileName    = "fitlog-watch.lock"
	DefaultWatchInterval = time.Minute
	DefaultBackoffBase   = time.Second
	DefaultBackoffMax    = 5 * time.Minute
	DefaultRemoteTimeout = 15 * time.Second
	DefaultProbeTimeout  = 2 * time.Second

	// XP awards
	DefaultXPMealLogged    = 50
	DefaultXPCalorieBurned = 1
	DefaultXPGlassWater    = 10
	DefaultXPMinuteSleep   = 1

	// XP needed per squared level step
	XPLevelFactor = 1000
)
