package logger

// Config controls the log level and, when FileName is set, file rotation.
type Config struct {
	Level      string
	FileName   string
	MaxSize    int
	MaxAge     int
	MaxBackups int
	Compress   bool
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "WARN",
		MaxSize:    50,
		MaxAge:     30,
		MaxBackups: 5,
		Compress:   true,
	}
}
