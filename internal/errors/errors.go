/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Common error types for schema provisioning

// ScriptStructureError reports a table or index that could not be located or parsed in the script
type ScriptStructureError struct {
	Object  string
	Message string
}

func (e ScriptStructureError) Error() string {
	return fmt.Sprintf("script structure error for %s: %s", e.Object, e.Message)
}

// TranslationError reports a construct with no mapping in the target dialect's rule table
type TranslationError struct {
	Dialect   string
	Construct string
	Statement string
}

func (e TranslationError) Error() string {
	return fmt.Sprintf("translation error: no %s mapping for %q in statement: %s",
		e.Dialect, e.Construct, abbreviate(e.Statement))
}

// ExecutionError wraps a backend rejection together with the statement that caused it
type ExecutionError struct {
	Phase     string
	Statement string
	Err       error
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("execution error during %s: %v\nstatement: %s", e.Phase, e.Err, e.Statement)
}

func (e ExecutionError) Unwrap() error {
	return e.Err
}

// ValidationError is a single invalid value, used for manifest and configuration checks
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// SchemaIncompleteError lists every required object missing from the live schema
type SchemaIncompleteError struct {
	MissingTables  []string
	MissingIndexes []string
}

func (e SchemaIncompleteError) Error() string {
	var parts []string
	if len(e.MissingTables) > 0 {
		parts = append(parts, "tables: "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingIndexes) > 0 {
		parts = append(parts, "indexes: "+strings.Join(e.MissingIndexes, ", "))
	}
	return fmt.Sprintf("schema incomplete: missing %s", strings.Join(parts, "; "))
}

// Missing returns every missing name, tables first
func (e SchemaIncompleteError) Missing() []string {
	out := make([]string, 0, len(e.MissingTables)+len(e.MissingIndexes))
	out = append(out, e.MissingTables...)
	return append(out, e.MissingIndexes...)
}

type DuplicateIndexError struct {
	Names []string
}

func (e DuplicateIndexError) Error() string {
	return fmt.Sprintf("duplicate index names in script: %s", strings.Join(e.Names, ", "))
}

type CircularDependencyError struct {
	Cycle []string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// Error wrapping helpers
func NewScriptStructureError(object, message string) error {
	return ScriptStructureError{Object: object, Message: message}
}

func NewTranslationError(dialect, construct, statement string) error {
	return TranslationError{Dialect: dialect, Construct: construct, Statement: statement}
}

func NewExecutionError(phase, statement string, err error) error {
	return ExecutionError{Phase: phase, Statement: statement, Err: err}
}

func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

func NewSchemaIncompleteError(tables, indexes []string) error {
	return SchemaIncompleteError{MissingTables: tables, MissingIndexes: indexes}
}

func NewDuplicateIndexError(names []string) error {
	return DuplicateIndexError{Names: names}
}

func NewCircularDependencyError(cycle []string) error {
	return CircularDependencyError{Cycle: cycle}
}

// Utility functions for error checking. They look through wrapped errors.
func IsScriptStructureError(err error) bool {
	var target ScriptStructureError
	return stderrors.As(err, &target)
}

func IsTranslationError(err error) bool {
	var target TranslationError
	return stderrors.As(err, &target)
}

func IsExecutionError(err error) bool {
	var target ExecutionError
	return stderrors.As(err, &target)
}

func IsValidationError(err error) bool {
	var target ValidationError
	return stderrors.As(err, &target)
}

func IsSchemaIncompleteError(err error) bool {
	var target SchemaIncompleteError
	return stderrors.As(err, &target)
}

func IsDuplicateIndexError(err error) bool {
	var target DuplicateIndexError
	return stderrors.As(err, &target)
}

func IsCircularDependencyError(err error) bool {
	var target CircularDependencyError
	return stderrors.As(err, &target)
}

// AsScriptStructure extracts the script-structure detail from err
func AsScriptStructure(err error) (ScriptStructureError, bool) {
	var target ScriptStructureError
	ok := stderrors.As(err, &target)
	return target, ok
}

// AsSchemaIncomplete extracts the schema-incomplete detail from err
func AsSchemaIncomplete(err error) (SchemaIncompleteError, bool) {
	var target SchemaIncompleteError
	ok := stderrors.As(err, &target)
	return target, ok
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}
