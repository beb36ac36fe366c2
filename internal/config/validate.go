// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML names so errors match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct constraints and returns connerrors.ValidationErrors
// listing every failed field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(connerrors.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		out = append(out, &connerrors.ValidationError{
			Field:   field,
			Message: formatValidationMessage(fe),
			Hint:    hintFor(field),
		})
	}
	return out
}

func formatValidationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

var envHints = map[string]string{
	"humio.url":     "Set HUMIO_URL or humio.url in config.yaml",
	"humio.api_key": "Set HUMIO_API_KEY, or run 'humio-connector auth set-key' and use api_key: keychain:api-key",
	"incidents.query_timezone_offset_minutes": "Set HUMIO_QUERY_TIMEZONE_OFFSET_MINUTES to a value between -720 and 840",
}

func hintFor(field string) string {
	if h, ok := envHints[field]; ok {
		return h
	}
	return fmt.Sprintf("Check %s in config.yaml", field)
}

// firstInvalidKey names the first failing field for ConfigError.Key.
func firstInvalidKey(err error) string {
	var verrs connerrors.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field
	}
	return "validation"
}
