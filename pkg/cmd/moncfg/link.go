package moncfg

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

type linkFlags struct {
	templates []string
	hosts     []string
}

func (f *linkFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.templates, "template", "t", nil, "Template name, repeatable")
	cmd.Flags().StringArrayVarP(&f.hosts, "host", "H", nil, "Host or template name, repeatable")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("host")
}

func newLinkCommand(out io.Writer, opts *Options) *cobra.Command {
	var f linkFlags
	cmd := &cobra.Command{
		Use:     "link",
		Short:   "Link templates to hosts; the hosts inherit the templates' entities",
		Example: `  moncfg link --template "Template OS Linux" --host web01 --host web02`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			templateIDs, hostIDs, err := f.resolve(cmd.Context(), s.registry)
			if err != nil {
				return report(out, nil, err)
			}
			res, err := s.service.LinkTemplates(cmd.Context(), templateIDs, hostIDs)
			return report(out, res, err)
		},
	}
	f.bind(cmd)
	return cmd
}

func newUnlinkCommand(out io.Writer, opts *Options) *cobra.Command {
	var (
		f          linkFlags
		clearAfter bool
	)
	cmd := &cobra.Command{
		Use:   "unlink",
		Short: "Unlink templates from hosts",
		Long: `Unlink templates from hosts. The hosts keep what they inherited as local entities
unless --clear is given, which deletes it together with everything depending on it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			templateIDs, hostIDs, err := f.resolve(cmd.Context(), s.registry)
			if err != nil {
				return report(out, nil, err)
			}
			res, err := s.service.UnlinkTemplates(cmd.Context(), templateIDs, hostIDs, clearAfter)
			return report(out, res, err)
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&clearAfter, "clear", false, "Delete inherited entities instead of keeping them")
	return cmd
}

// resolve looks up the host ids of the named templates and hosts
func (f *linkFlags) resolve(ctx context.Context, registry ports.Registry) ([]models.ID, []models.ID, error) {
	reader, err := registry.Reader(ctx)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "open reader")
	}
	defer reader.Close()
	lookup := func(names []string) ([]models.ID, error) {
		keys := make([]models.NaturalKey, 0, len(names))
		for _, n := range names {
			keys = append(keys, models.HostKey(n))
		}
		found, err := reader.FindIDs(ctx, models.KindHost, keys)
		if err != nil {
			return nil, errors.WithMessage(err, "find hosts")
		}
		ids := make([]models.ID, 0, len(keys))
		for _, k := range keys {
			id, ok := found[k]
			if !ok {
				return nil, errors.Errorf("host or template '%s' does not exist", k.Name)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	templateIDs, err := lookup(f.templates)
	if err != nil {
		return nil, nil, err
	}
	hostIDs, err := lookup(f.hosts)
	if err != nil {
		return nil, nil, err
	}
	return templateIDs, hostIDs, nil
}
