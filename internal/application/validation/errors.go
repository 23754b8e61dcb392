package validation

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
)

// Error kinds reported by ErrorKind
const (
	KindUnresolvedReference       = "unresolved-reference"
	KindCircularLinkage           = "circular-linkage"
	KindDuplicateLinkage          = "duplicate-linkage"
	KindLinkedToDifferentTemplate = "linked-to-different-template"
	KindPermissionDenied          = "permission-denied"
	KindStoreError                = "store-error"
	KindInvalidInput              = "invalid-input"
	KindInternal                  = "internal"
)

// ErrKeyNotSeeded is returned by the resolver for a key that was never seeded; it is a programming error
var ErrKeyNotSeeded = errors.New("natural key was not seeded")

// ValidationError represents malformed input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// UnresolvedReferenceError an object references a key that is neither imported nor stored
type UnresolvedReferenceError struct {
	Ref      models.NaturalKey
	Referrer models.NaturalKey
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s references %s which does not exist", e.Referrer, e.Ref)
}

// NewUnresolvedReferenceError creates a new unresolved reference error
func NewUnresolvedReferenceError(ref, referrer models.NaturalKey) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{
		Ref:      ref,
		Referrer: referrer,
	}
}

// CircularLinkageError the link graph contains a cycle
type CircularLinkageError struct {
	Kind models.LinkKind
	Path []string
}

func (e *CircularLinkageError) Error() string {
	return fmt.Sprintf("circular %s linkage: %s", e.Kind, strings.Join(e.Path, " -> "))
}

// DuplicateLinkageError a template is reachable from a host through two distinct paths
type DuplicateLinkageError struct {
	Host     string
	Template string
}

func (e *DuplicateLinkageError) Error() string {
	return fmt.Sprintf("template '%s' is linked to '%s' more than once", e.Template, e.Host)
}

// LinkedToDifferentTemplateError a host-level entity is already inherited from another template
type LinkedToDifferentTemplateError struct {
	Host          string
	Entity        models.NaturalKey
	Template      string
	OtherTemplate string
}

func (e *LinkedToDifferentTemplateError) Error() string {
	return fmt.Sprintf("cannot inherit %s from template '%s' on '%s': it is already linked to template '%s'",
		e.Entity, e.Template, e.Host, e.OtherTemplate)
}

// PermissionDeniedError the caller may not write the records
type PermissionDeniedError struct {
	Kind models.Kind
	IDs  []models.ID
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("no permission to modify %s %v", e.Kind, e.IDs)
}

// StoreError wraps a failed persistence call with its operation
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *StoreError) Unwrap() error { return e.Err }

// Cause returns the underlying store error
func (e *StoreError) Cause() error { return e.Err }

// NewStoreError wraps err, nil stays nil
func NewStoreError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: fmt.Sprintf(format, args...), Err: err}
}

// ErrorKind maps an error to its kind
func ErrorKind(err error) string {
	var (
		unresolved *UnresolvedReferenceError
		circular   *CircularLinkageError
		duplicate  *DuplicateLinkageError
		different  *LinkedToDifferentTemplateError
		denied     *PermissionDeniedError
		store      *StoreError
		invalid    *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unresolved):
		return KindUnresolvedReference
	case errors.As(err, &circular):
		return KindCircularLinkage
	case errors.As(err, &duplicate):
		return KindDuplicateLinkage
	case errors.As(err, &different):
		return KindLinkedToDifferentTemplate
	case errors.As(err, &denied):
		return KindPermissionDenied
	case errors.As(err, &store):
		return KindStoreError
	case errors.As(err, &invalid):
		return KindInvalidInput
	}
	return KindInternal
}
