package postgres

var (
	ToURL         = Config.toURL
	ArgsToStrings = argsToStrings
)
