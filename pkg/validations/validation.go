// All global custom validations in Chalkboard are defined here.
// These validations are allowed to be used anywhere in the application.

package validations

import (
	"Chalkboard/pkg/log"
	"context"
	"strings"

	"github.com/asaskevich/govalidator"
)

// This function registers custom validation tags to be used as annotations in structs.
// After registering and adding the annotation, govalidator.ValidateStruct will trigger the validation.
func RegisterCustomValidationTags(ctx context.Context, logger log.Logger) {
	// This global validation rejects input which is empty or whitespace only.
	govalidator.TagMap["notblank"] = govalidator.Validator(func(str string) bool {
		return len(strings.TrimSpace(str)) != 0
	})
	logger.WithCtx(ctx).Info().Msg("Registered custom validation tags.")
}
