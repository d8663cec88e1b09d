package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	errs "imagify/internal/errors"
	"imagify/internal/model"
)

// fakeImageAPI is a scripted imagegen.Client.
type fakeImageAPI struct {
	image []byte
	err   error
	calls int
}

func (f *fakeImageAPI) TextToImage(ctx context.Context, prompt string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

func TestImageService_Generate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("DeductCredits", mock.Anything, uint(1), int64(1)).Return(nil)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, CreditBalance: 4}, nil)
	api := &fakeImageAPI{image: []byte("png-bytes")}

	service := NewImageService(mockRepo, api, nil)

	dataURL, remaining, err := service.Generate(context.Background(), 1, "a red fox")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	assert.Equal(t, int64(4), remaining)
	assert.Equal(t, 1, api.calls)
	mockRepo.AssertExpectations(t)
}

func TestImageService_Generate_InsufficientCredits(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("DeductCredits", mock.Anything, uint(1), int64(1)).Return(errs.ErrInsufficientCredits)
	api := &fakeImageAPI{image: []byte("png-bytes")}

	service := NewImageService(mockRepo, api, nil)

	_, _, err := service.Generate(context.Background(), 1, "a red fox")
	assert.Equal(t, errs.ErrInsufficientCredits, err)
	// the API must not be called for a user with no credits
	assert.Equal(t, 0, api.calls)
	mockRepo.AssertExpectations(t)
}

func TestImageService_Generate_APIFailureRefunds(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("DeductCredits", mock.Anything, uint(1), int64(1)).Return(nil)
	mockRepo.On("AddCredits", mock.Anything, uint(1), int64(1)).Return(nil)
	api := &fakeImageAPI{err: errors.New("upstream 500")}

	service := NewImageService(mockRepo, api, nil)

	_, _, err := service.Generate(context.Background(), 1, "a red fox")
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}
