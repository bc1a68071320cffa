// Package services exposes one request module per backend resource. Each
// function issues a single HTTP call through the adapter and returns the
// decoded payload; errors propagate unchanged for the state layer to
// surface. There is no caching and no deduplication of in-flight calls.
package services

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkValid runs the shallow struct-tag validation on a request payload.
func checkValid(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// pageQuery builds the standard pagination parameters. Negative values are
// left to the backend's defaults.
func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page >= 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}
