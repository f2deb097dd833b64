package types

// Version is the application version, overwritten at build time with
// -ldflags "-X github.com/m-mizutani/emlget/pkg/domain/types.Version=..."
var Version = "dev"

// AppName is used for the CLI name and the default User-Agent
const AppName = "emlget"
