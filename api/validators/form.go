package validators

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

var (
	validate    = newValidator()
	formDecoder = form.NewDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

func (fe FieldErrors) Add(field, msg string) FieldErrors {
	if fe == nil {
		fe = FieldErrors{}
	}
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
	return fe
}

// DecodeForm binds the urlencoded request body into dest and validates it.
// Binding and validation problems come back as FieldErrors; the error return
// is reserved for unreadable requests.
func DecodeForm(r *http.Request, dest any) (FieldErrors, error) {
	if err := r.ParseForm(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}

	var fieldErrs FieldErrors
	if err := formDecoder.Decode(dest, r.PostForm); err != nil {
		var decodeErrs form.DecodeErrors
		if !errors.As(err, &decodeErrs) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
		}
		for field := range decodeErrs {
			fieldErrs = fieldErrs.Add(field, label(dest, field)+" must be a whole number")
		}
	}
	trimStrings(dest)

	if err := validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
		for _, fe := range verrs {
			fieldErrs = fieldErrs.Add(fe.Field(), validationMessage(fe, label(dest, fe.Field())))
		}
	}
	return fieldErrs, nil
}

func validationMessage(fe validator.FieldError, name string) string {
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "email":
		return "Please provide a valid email"
	case "oneof":
		return name + " is invalid"
	}
	return name + " is invalid"
}

// label returns the `label` tag of the struct field bound to formName.
func label(dest any, formName string) string {
	t := reflect.TypeOf(dest)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return formName
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if strings.SplitN(f.Tag.Get("form"), ",", 2)[0] != formName {
			continue
		}
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	}
	return formName
}

// trimStrings trims every string field unless it is tagged `trim:"false"`.
func trimStrings(dest any) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() || t.Field(i).Tag.Get("trim") == "false" {
			continue
		}
		f.SetString(SanitizeString(f.String(), 0))
	}
}
