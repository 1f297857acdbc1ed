package http

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// OptionalFloat parses query parameter name. Absent or blank yields nil.
func OptionalFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, BadRequestErrorf("%s must be a number", name).WithField(name).WithError(err)
	}
	return &v, nil
}

// BindOptionalFloats fills each target from its query parameter.
func BindOptionalFloats(c echo.Context, targets map[string]**float64) error {
	for name, dst := range targets {
		v, err := OptionalFloat(c, name)
		if err != nil {
			return err
		}
		if v != nil {
			*dst = v
		}
	}
	return nil
}
