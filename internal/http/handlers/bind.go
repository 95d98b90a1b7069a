package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/coursehub/internal/domain/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// selfValidator is implemented by payloads whose rules binding tags cannot
// express, such as a field sent as null.
type selfValidator interface {
	Validate() error
}

// BindJSON decodes and validates the request body into out. Every failure is
// returned as a *validation.Error with one message per rejected field.
func BindJSON(ctx *gin.Context, out interface{}) error {
	err := ctx.ShouldBindJSON(out)

	if errors.Is(err, io.EOF) {
		// empty body, still report the required fields
		err = binding.Validator.ValidateStruct(out)
	}

	if err != nil {
		return validation.New(bindErrorMessages(err, out)...)
	}

	if v, ok := out.(selfValidator); ok {
		return v.Validate()
	}

	return nil
}

func bindErrorMessages(err error, out interface{}) []string {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		messages := make([]string, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := jsonPathFromValidatorError(rootType, fieldError)
			messages = append(messages, validationMessage(field, fieldError.Tag(), fieldError.Param()))
		}
		return messages
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []string{"Request body must be valid JSON"}
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := jsonPathFromDotPath(rootType, unmatchedTypeError.Field)

		if field == "" {
			field = strings.TrimSpace(unmatchedTypeError.Field)
		}

		if field == "" {
			return []string{"Request body must be a JSON object"}
		}

		return []string{fmt.Sprintf("%q must be of type %s", field, unmatchedTypeError.Type.String())}
	}

	var tooLarge *http.MaxBytesError

	if errors.As(err, &tooLarge) {
		return []string{"Request body is too large"}
	}

	// final fallback if the error could not be deciphered
	return []string{err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	// Namespace format is usually "<StructName>.<Field>[.<NestedField>...]".
	namespace := fieldError.StructNamespace()
	if namespace == "" {
		namespace = fieldError.Namespace()
	}

	if namespace == "" {
		return fieldError.Field()
	}

	parts := strings.Split(namespace, ".")
	if len(parts) == 0 {
		return fieldError.Field()
	}

	if rootType != nil && rootType.Name() != "" && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	path := mapStructPathToJSONPath(rootType, parts)
	if path != "" {
		return path
	}

	return fieldError.Field()
}

func jsonPathFromDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	return mapStructPathToJSONPath(rootType, strings.Split(dotPath, "."))
}

func mapStructPathToJSONPath(rootType reflect.Type, parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	current := rootType
	out := make([]string, 0, len(parts))

	for _, rawPart := range parts {
		if rawPart == "" {
			continue
		}

		fieldName, indexSuffix := splitFieldIndex(rawPart)
		jsonName := fieldName

		nextType := reflect.Type(nil)
		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(fieldName); ok {
					jsonName = jsonNameFromStructField(sf)
					nextType = sf.Type
				}
			}
		}

		out = append(out, jsonName+indexSuffix)

		if nextType != nil {
			current = unwindCollection(nextType)
		} else {
			current = nil
		}
	}

	return strings.Join(out, ".")
}

func splitFieldIndex(part string) (string, string) {
	idx := strings.Index(part, "[")
	if idx == -1 {
		return part, ""
	}

	return part[:idx], part[idx:]
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func unwindCollection(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}

	return nil
}

func validationMessage(field, rule, param string) string {
	switch rule {
	case "required":
		return validation.RequiredMsg(field)
	case "email":
		return fmt.Sprintf("%q must be a valid email address", field)
	case "min":
		if param == "1" {
			return validation.RequiredMsg(field)
		}
		return fmt.Sprintf("%q must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%q must be at most %s", field, param)
	default:
		if param != "" {
			return fmt.Sprintf("%q failed %s validation (%s)", field, rule, param)
		}
		return fmt.Sprintf("%q failed %s validation", field, rule)
	}
}
