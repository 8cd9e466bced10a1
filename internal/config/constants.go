package config

import "time"

// Persistence and history defaults.
const (
	DefaultPersistTimeout = 3 * time.Second
	DefaultWatchInterval  = 2 * time.Second
	DefaultHistoryDepth   = 100
	DefaultDocumentKey    = "roadmap"
)

// Server and logging defaults.
const (
	DefaultAddr      = "127.0.0.1:8750"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Names used when a fresh store is seeded.
const (
	DefaultTimelineName = "Roadmap"
	DefaultTeamName     = "Team 1"
)

// Database/application settings.
const (
	AppName               = "roadmap"
	DBFileName            = "roadmap.db"
	ConfigFileName        = "config.yaml"
	EnvPrefix             = "ROADMAP"
	MaxPassphraseAttempts = 3
)

// Settings keys stored in the database.
const (
	SettingTheme = "theme"
)
