package moncfg

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

// failure is printed in place of a result when an operation fails
type failure struct {
	Success bool   `yaml:"success"`
	Error   string `yaml:"error"`
	Message string `yaml:"message"`
}

// report prints the result, or the failure when err is set, and returns err
func report(out io.Writer, res *models.Result, err error) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	var doc interface{} = res
	if err != nil {
		doc = failure{Error: validation.ErrorKind(err), Message: err.Error()}
	}
	if encErr := enc.Encode(doc); encErr != nil {
		return errors.Wrap(encErr, "write result")
	}
	return err
}
