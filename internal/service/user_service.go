package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/repository/ports"
)

// ErrUnsupportedImage is returned when an avatar upload is not a decodable
// jpeg, png, gif or webp image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ErrImageTooLarge is returned when an avatar upload exceeds the configured
// byte limit.
var ErrImageTooLarge = errors.New("image too large")

const defaultListLimit = 100

type UserService struct {
	users          ports.UserRepository
	storage        ports.ObjectStorage
	maxAvatarBytes int64
}

// NewUserService wires profile reads and writes. storage may be nil; avatar
// uploads are then rejected as unconfigured.
func NewUserService(users ports.UserRepository, storage ports.ObjectStorage, maxAvatarBytes int64) *UserService {
	return &UserService{users: users, storage: storage, maxAvatarBytes: maxAvatarBytes}
}

func (s *UserService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	return s.users.UpdateProfile(ctx, id, update)
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// UploadAvatar validates and stores an avatar image, then points the
// account's avatar URL at the stored object.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, fileName, contentType string, reader io.Reader, size int64) (*domain.User, error) {
	if s.storage == nil {
		return nil, errors.New("object storage not configured")
	}
	if s.maxAvatarBytes > 0 && size > s.maxAvatarBytes {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(reader, s.maxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxAvatarBytes > 0 && int64(len(data)) > s.maxAvatarBytes {
		return nil, ErrImageTooLarge
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, ErrUnsupportedImage
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".img"
	}
	objectName := fmt.Sprintf("avatars/%d-%s%s", userID, uuid.NewString(), ext)

	url, err := s.storage.Upload(ctx, objectName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	return s.users.UpdateProfile(ctx, userID, domain.ProfileUpdate{Avatar: &url})
}
