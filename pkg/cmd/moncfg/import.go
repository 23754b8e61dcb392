package moncfg

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/infrastructure/parser"
)

func newImportCommand(out io.Writer, opts *Options) *cobra.Command {
	var (
		file  string
		rules []string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an export document",
		Example: `  moncfg import --memory --file export.yaml
  moncfg import --pg-uri postgres://localhost/moncfg --file export.yaml --rules item=create --rules trigger=none`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := parser.ParseFile(file)
			if err != nil {
				return report(out, nil, err)
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			policies, err := parseRules(s.cfg.Import.Policies(), rules)
			if err != nil {
				return err
			}
			res, err := s.service.ImportConfiguration(cmd.Context(), tree, policies)
			return report(out, res, err)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Export document to import (YAML or JSON)")
	cmd.Flags().StringArrayVar(&rules, "rules", nil,
		"Per-kind policy as kind=create,update|create|update|none; overrides the configured rule of the kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseRules overrides base with kind=actions rules
func parseRules(base models.Policies, rules []string) (models.Policies, error) {
	ret := make(models.Policies, len(base))
	for k, p := range base {
		ret[k] = p
	}
	for _, r := range rules {
		name, actions, ok := strings.Cut(r, "=")
		if !ok {
			return nil, errors.Errorf("rule '%s': expected kind=actions", r)
		}
		var kind models.Kind
		if err := kind.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
			return nil, errors.WithMessagef(err, "rule '%s'", r)
		}
		var p models.SyncPolicy
		for _, a := range strings.Split(actions, ",") {
			switch strings.TrimSpace(a) {
			case "create":
				p.CreateMissing = true
			case "update":
				p.UpdateExisting = true
			case "none", "":
			default:
				return nil, errors.Errorf("rule '%s': unknown action '%s'", r, a)
			}
		}
		ret[kind] = p
	}
	return ret, nil
}
