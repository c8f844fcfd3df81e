package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cybergodev/jwtcodec"
	"github.com/cybergodev/jwtcodec/internal/config"
	"github.com/cybergodev/jwtcodec/internal/logger"
	"github.com/cybergodev/jwtcodec/internal/security"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg   *config.Config
	log   *logger.Logger
	codec *jwtcodec.Codec
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.InitViper()}

	root := &cobra.Command{
		Use:   "jwtcodec",
		Short: "Encode, decode and inspect JSON Web Tokens",
		Long: `jwtcodec converts between compact JWTs and their header and payload JSON.

Decoding never checks the signature. Encoding accepts hand-edited JSON
(comments, unquoted keys, single quotes, trailing commas) and signs with
HMAC-SHA256 using --key, which defaults to the empty key.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	config.BindFlags(root, a.v)

	root.AddCommand(
		a.encodeCommand(),
		a.decodeCommand(),
		a.verifyCommand(),
		a.inspectCommand(),
		a.timestampCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts, err := cfg.Log.LoggerOptions()
	if err != nil {
		return err
	}
	a.log = logger.NewWithWriter(logger.ComponentCLI, cmd.ErrOrStderr(), opts)
	if used := config.ConfigFileUsed(a.v); used != "" {
		a.log.Debug("loaded config file", "path", used)
	}

	codec, err := jwtcodec.New(cfg.Codec.JWTCodec())
	if err != nil {
		return fmt.Errorf("failed to create codec: %w", err)
	}
	a.codec = codec

	if key := []byte(cfg.Codec.Key); len(key) > 0 {
		if reason := security.WeakKeyReason(key); reason != "" {
			a.log.Warn("signing key is weak", "reason", reason)
		}
	}
	return nil
}
