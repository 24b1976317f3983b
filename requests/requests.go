// contains inbound request types and their validation
package requests

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/foomo/roadmapserver/roadmap"
	"github.com/go-playground/validator/v10"
)

var (
	roadmapSlugPattern = regexp.MustCompile(`(?i)^[a-z0-9-]+$`)
	nodeIDPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// validate package level singleton, safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their wire names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "roadmapslug", func(fl validator.FieldLevel) bool {
		return roadmapSlugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "nodeid", func(fl validator.FieldLevel) bool {
		return nodeIDPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "nameslug", func(fl validator.FieldLevel) bool {
		return roadmap.Slugify(fl.Field().String()) != ""
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}
