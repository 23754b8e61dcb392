package moncfg

import (
	"context"
	"flag"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/services"
	"moncfg-backend/internal/config"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/infrastructure/permissions"
	"moncfg-backend/internal/infrastructure/repositories"
	"moncfg-backend/internal/patterns"
)

// RegistryFunc opens the store described by the storage configuration
type RegistryFunc func(ctx context.Context, cfg repositories.Config) (ports.Registry, error)

// Options are the flags shared by every command
type Options struct {
	ConfigPath string
	Memory     bool
	PgURI      string

	// NewRegistry defaults to the repository factory
	NewRegistry RegistryFunc
}

// session is an opened store together with the service working on it
type session struct {
	cfg      *config.Config
	registry ports.Registry
	service  *services.ConfigurationService
}

// NewCommand creates the moncfg command tree
func NewCommand(out io.Writer, opts *Options) *cobra.Command {
	if opts == nil {
		opts = &Options{}
	}
	cmd := &cobra.Command{
		Use:           "moncfg",
		Short:         "Import monitoring configuration and manage template links",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newImportCommand(out, opts),
		newLinkCommand(out, opts),
		newUnlinkCommand(out, opts),
	)
	return cmd
}

// AddFlags adds the shared flags to the specified FlagSet
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "", "Path to configuration file")
	fs.BoolVar(&o.Memory, "memory", false, "Use in-memory storage (overrides config)")
	fs.StringVar(&o.PgURI, "pg-uri", "", "PostgreSQL connection URI (overrides config)")
	// Make Go standard flags (including klog) available so users can use -v
	fs.AddGoFlagSet(flag.CommandLine)
}

// open loads the configuration, applies flag overrides and opens the store
func (o *Options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.NewConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	switch {
	case o.Memory:
		cfg.Storage.Type = repositories.RepositoryTypeMemory
	case o.PgURI != "":
		cfg.Storage.Type = repositories.RepositoryTypePostgreSQL
		cfg.Storage.PostgreSQL.URI = o.PgURI
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "configuration validation failed")
	}
	setVerbosity(cmd, cfg.Log)

	newRegistry := o.NewRegistry
	if newRegistry == nil {
		newRegistry = func(ctx context.Context, c repositories.Config) (ports.Registry, error) {
			return repositories.NewFactory(c).CreateRegistry(ctx)
		}
	}
	registry, err := newRegistry(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	err = registry.Subject().Subscribe(patterns.ObserverFunc(func(event interface{}) {
		if e, ok := event.(models.CommitEvent); ok {
			klog.V(2).Infof("committed changes to %v", e.Kinds)
		}
	}))
	if err != nil {
		_ = registry.Close()
		return nil, errors.WithMessage(err, "failed to subscribe to commits")
	}
	var perms ports.PermissionChecker = permissions.AllowAll{}
	if len(cfg.Permissions.ReadOnlyHosts) > 0 {
		perms = permissions.NewReadOnlyHosts(registry, cfg.Permissions.ReadOnlyHosts)
	}
	klog.V(2).Infof("%s %s using %s storage", cfg.App.Name, cfg.App.Version, storageName(cfg.Storage))
	return &session{
		cfg:      cfg,
		registry: registry,
		service:  services.NewConfigurationService(registry, perms),
	}, nil
}

func (s *session) Close() error {
	return s.registry.Close()
}

// setVerbosity applies the configured log level unless -v was given
func setVerbosity(cmd *cobra.Command, l config.Log) {
	if f := cmd.Flags().Lookup("v"); f == nil || f.Changed {
		return
	}
	if v, err := l.Verbosity(); err == nil && v > 0 {
		_ = flag.CommandLine.Set("v", strconv.Itoa(v))
	}
}

func storageName(c repositories.Config) string {
	if c.Type == "" {
		return string(repositories.RepositoryTypeMemory)
	}
	return string(c.Type)
}
