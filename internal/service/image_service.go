package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"imagify/internal/cache"
	"imagify/internal/imagegen"
	"imagify/internal/repository"
)

// imageGenerationCost is the credit price of one generated image.
const imageGenerationCost = 1

// ImageService turns prompts into images, spending one credit per image.
type ImageService interface {
	Generate(ctx context.Context, userID uint, prompt string) (dataURL string, remaining int64, err error)
}

type imageService struct {
	userRepo repository.UserRepository
	images   imagegen.Client
	cache    *cache.Client
}

// NewImageService creates a new image generation service.
func NewImageService(userRepo repository.UserRepository, images imagegen.Client, cache *cache.Client) ImageService {
	return &imageService{
		userRepo: userRepo,
		images:   images,
		cache:    cache,
	}
}

// Generate deducts one credit, calls the image API, and returns the image as a
// data URL plus the remaining balance. The deduction is conditional on a
// sufficient balance and is refunded if the API call fails, so the balance
// only ever drops for images the user actually received.
func (s *imageService) Generate(ctx context.Context, userID uint, prompt string) (string, int64, error) {
	if err := s.userRepo.DeductCredits(ctx, userID, imageGenerationCost); err != nil {
		return "", 0, err
	}
	_ = s.cache.Delete(ctx, creditsCacheKey(userID))

	image, err := s.images.TextToImage(ctx, prompt)
	if err != nil {
		if refundErr := s.userRepo.AddCredits(ctx, userID, imageGenerationCost); refundErr != nil {
			return "", 0, fmt.Errorf("generate image: %v (refund failed: %w)", err, refundErr)
		}
		_ = s.cache.Delete(ctx, creditsCacheKey(userID))
		return "", 0, fmt.Errorf("generate image: %w", err)
	}

	remaining := int64(0)
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		remaining = user.CreditBalance
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	return dataURL, remaining, nil
}
