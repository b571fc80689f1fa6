package store

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Minimal local@domain.tld shape; stricter RFC parsing is deliberately avoided.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// checkStruct runs the tag-driven constraints on a parsed entity and converts
// the first failure into a rejection named <field>_<tag>.
func (r *rowReader) checkStruct(entity any) {
	if r.bad != nil {
		return
	}
	err := structValidator.Struct(entity)
	if err == nil {
		return
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		r.fail(
			fmt.Sprintf("%s_%s", fe.Field(), fe.Tag()),
			fe.Field(),
			fmt.Sprintf("%v", fe.Value()),
			fmt.Sprintf("failed %q constraint", fe.Tag()),
		)
		return
	}
	r.fail(ConstraintUnparseableField, "", "", err.Error())
}
