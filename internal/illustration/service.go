// Service layer of the internal package illustration which encapsulates
// the storytime illustration pipeline of Chalkboard.

package illustration

import (
	"Chalkboard/internal/entity"
	"Chalkboard/internal/errors"
	"Chalkboard/internal/sse"
	"Chalkboard/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

// Body of the direct generate endpoint.
type GenerateRequest struct {
	Prompt string `json:"prompt" valid:"required,notblank~prompt:Prompt must not be blank"`
}

type Service interface {
	// Runs the webhook pipeline: announce, synthesize a prompt, call the
	// image API once and fan the result out to every open connection.
	generateForStory(ctx context.Context, sctx entity.StoryContext) (string, error)
	// Calls the image API with the literal prompt, request/response only,
	// never touches the connection registry.
	generate(ctx context.Context, request GenerateRequest) (string, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
type service struct {
	broadcaster sse.Service
	client      Client
	logger      log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(broadcaster sse.Service, client Client, logger log.Logger) Service {
	return service{broadcaster, client, logger}
}

func (s service) generateForStory(ctx context.Context, sctx entity.StoryContext) (string, error) {
	// Announce first so every listening tab can show a loading state
	// before the slow external call completes.
	s.broadcaster.Broadcast(ctx, entity.GenerationStartedEvent(sctx))

	prompt := BuildPrompt(sctx)
	s.logger.WithCtx(ctx).Debug().Msgf("Synthesized illustration prompt: %s", prompt)

	// Single fail-fast attempt, no retry.
	imageURL, genErr := s.client.GenerateImage(ctx, prompt)
	if genErr != nil {
		// Never broadcast an illustration event on failure.
		s.logger.WithCtx(ctx).Error().Err(genErr).Msg("Story illustration generation failed")
		return "", genErr
	}

	s.broadcaster.Broadcast(ctx, entity.IllustrationEvent(imageURL, sctx))
	return imageURL, nil
}

func (s service) generate(ctx context.Context, request GenerateRequest) (string, error) {
	// Validate the received request against validation-tags mentioned in its struct
	_, valerr := govalidator.ValidateStruct(request)
	if valerr != nil {
		verrs, ok := valerr.(govalidator.Errors)
		if !ok {
			return "", errors.BadRequest("")
		}
		return "", errors.GenerateValidationErrorResponse(verrs.Errors())
	}

	imageURL, genErr := s.client.GenerateImage(ctx, request.Prompt)
	if genErr != nil {
		s.logger.WithCtx(ctx).Error().Err(genErr).Msg("Direct illustration generation failed")
		return "", genErr
	}
	return imageURL, nil
}
