package config

const (
	// DefaultDatabasePath is the default path for the catalog cache database
	DefaultDatabasePath = "./aroundegypt.db"

	// DefaultProbeURL is probed to decide whether the device is online
	DefaultProbeURL = "https://aroundegypt.34ml.com"
)
