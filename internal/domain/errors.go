package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an input file. It is
// fatal: nothing is processed when the schema does not match.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// ConfigError reports a configuration constraint violated for a single
// product (e.g. forecast horizon shorter than the product's lead time). It
// aborts that product's computation only.
type ConfigError struct {
	ProductID string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("product %s: %s", e.ProductID, e.Reason)
}

// ModelFitError reports a per-product forecasting failure. The caller
// recovers by substituting the fallback model.
type ModelFitError struct {
	ProductID string
	Model     string
	Err       error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("product %s: %s fit failed: %v", e.ProductID, e.Model, e.Err)
}

func (e *ModelFitError) Unwrap() error {
	return e.Err
}
