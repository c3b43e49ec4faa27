package database

// Config holds configuration for the warehouse connection.
type Config struct {
	// Driver is the SQL driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the warehouse host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the warehouse port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the warehouse user.
	User string `mapstructure:"user" default:"root"`
	// Password is the warehouse password.
	Password string `mapstructure:"password" default:""`
	// Name is the database to connect to. For sqlite this is the file path
	// (or ":memory:").
	Name string `mapstructure:"name" default:"configurations"`
	// Schema is the schema whose tables are exposed for editing.
	Schema string `mapstructure:"schema" default:"configurations"`
	// TimeoutSeconds bounds connection setup and per-statement I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
