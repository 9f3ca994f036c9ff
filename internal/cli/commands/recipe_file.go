package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
)

var validate = validator.New()

// loadRecipeFile reads a YAML recipe ("-" for stdin) and validates it before upload
func loadRecipeFile(path string, stdin io.Reader) (client.RecipeInput, error) {
	var input client.RecipeInput

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return input, fmt.Errorf("failed to read recipe file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return input, fmt.Errorf("recipe file %s is empty", path)
		}
		return input, fmt.Errorf("failed to parse recipe file: %w", err)
	}

	if err := validate.Struct(input); err != nil {
		return input, describeValidation(err)
	}

	return input, nil
}

// describeValidation turns validator errors into one line per field
func describeValidation(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	lines := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := strings.TrimPrefix(fe.Namespace(), "RecipeInput.")
		switch fe.Tag() {
		case "required", "required_with":
			lines = append(lines, fmt.Sprintf("%s is required", field))
		case "max":
			lines = append(lines, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "url":
			lines = append(lines, fmt.Sprintf("%s must be a URL", field))
		case "gte":
			lines = append(lines, fmt.Sprintf("%s must not be negative", field))
		default:
			lines = append(lines, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}

	return fmt.Errorf("invalid recipe:\n  %s", strings.Join(lines, "\n  "))
}
