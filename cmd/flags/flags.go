package flags

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"github.com/willsigmon/LeavnOfficial/common"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var CredentialsDirFlag = &cli.StringFlag{
	Name:  "credentials-dir",
	Value: ".",
	Usage: "directory containing the api_credentials.env file",
}

var BundleIDFlag = &cli.StringFlag{
	Name:     "bundle-id",
	Required: true,
	Usage:    "bundle identifier of the app to operate on, e.g. com.example.app",
}

var APIBaseURLFlag = &cli.StringFlag{
	Name:  "api-base-url",
	Usage: "override the App Store Connect API base URL",
}

var VaultAddrFlag = &cli.StringFlag{
	Name:    "vault-addr",
	Usage:   "Vault server address; when set, API credentials are read from Vault instead of the credentials dir",
	EnvVars: []string{"VAULT_ADDR"},
}
var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Usage:   "Vault authentication token",
	EnvVars: []string{"VAULT_TOKEN"},
}
var VaultMountFlag = &cli.StringFlag{
	Name:  "vault-mount",
	Value: "secret",
	Usage: "Vault KV v2 mount path holding the API credentials",
}
var VaultSecretPathFlag = &cli.StringFlag{
	Name:  "vault-secret-path",
	Value: "appstore/api",
	Usage: "path of the API credentials secret under the Vault mount",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	CredentialsDirFlag,
	BundleIDFlag,
	APIBaseURLFlag,
	VaultAddrFlag,
	VaultTokenFlag,
	VaultMountFlag,
	VaultSecretPathFlag,
}
