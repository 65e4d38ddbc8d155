package main

// Config is read from flags, environment and an optional JSON file.
type Config struct {
	Command  string `usage:"inspect | dump | get | set | register | drop | backup | restore | list | delete"`
	Dir      string `usage:"catalog directory"`
	Property string `usage:"property name"`
	Type     string `usage:"property type for register: int8 | int16 | int32 | int64 | uint32 | uint64 | float | double | datetime"`
	Pos      int    `usage:"document position for get and set"`
	Value    string `usage:"value for set"`
	Location string `usage:"time zone used to print datetime values"`

	Store       string `usage:"local backup directory"`
	Bucket      string `usage:"S3 bucket for backups, overrides store"`
	Prefix      string `usage:"key prefix inside the bucket"`
	Endpoint    string `usage:"S3-compatible endpoint, uses the MinIO client when set"`
	AccessKey   string `usage:"access key for the endpoint"`
	SecretKey   string `usage:"secret key for the endpoint"`
	Secure      bool   `usage:"use TLS for the endpoint"`
	Backup      string `usage:"backup id for restore and delete"`
	Compression string `usage:"backup compression: none | lz4 | zstd"`
	IOLimit     int64  `usage:"backup bandwidth limit in bytes per second, 0 for unlimited"`
	Workers     int    `usage:"tables transferred in parallel"`

	Verbose    bool `usage:"debug logging"`
	ShowConfig bool `usage:"print config"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Command:     "inspect",
		Dir:         "data",
		Location:    "Local",
		Store:       "backups",
		Compression: "zstd",
		Workers:     4,
	}
}
