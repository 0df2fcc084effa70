package service

import (
	"context"

	"coinctl/internal/domain/entity"
)

// MetadataValidator fetches the content behind a scheme-checked URI and validates it as coin metadata.
type MetadataValidator interface {
	ValidateContent(ctx context.Context, uri entity.MetadataURI) (*entity.MetadataValidation, error)
}
