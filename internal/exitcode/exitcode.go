package exitcode

const (
	Success     = 0
	UsageError  = 1
	ConfigError = 2
	LoadError   = 3
	ServeError  = 4
	RenderError = 5
)
