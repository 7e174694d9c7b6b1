package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for thumbnails
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/platform/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
)

type ImageService struct {
	imageRepo repository.ImageRepository
}

func NewImageService(imageRepo repository.ImageRepository) *ImageService {
	return &ImageService{imageRepo: imageRepo}
}

// NextImage picks a random image and shapes it for a grader: id plus a
// URL under the public image host.
func (s *ImageService) NextImage(ctx context.Context) (*model.NextImage, error) {
	img, err := s.imageRepo.NextRandom(ctx)
	if err != nil {
		return nil, err
	}
	return &model.NextImage{
		ID:  img.ID,
		URL: config.AppConfig.ImageBaseURL + img.Path,
	}, nil
}

// Upload stores the file on disk under a collision-free name, records
// its hash, writes a JPEG thumbnail next to it, and inserts the row.
func (s *ImageService) Upload(ctx context.Context, uploaderID int64, fromIP string, file multipart.File, header *multipart.FileHeader) (*model.Image, error) {
	storedName := storedFilename(header.Filename)
	fullPath := filepath.Join(config.AppConfig.ImageDir, storedName)

	out, err := os.Create(fullPath)
	if err != nil {
		return nil, common.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), file); err != nil {
		os.Remove(fullPath)
		return nil, common.Errorf("failed to store image file: %w", err)
	}

	// Thumbnail failure is not fatal; the full image is already stored.
	if err := writeThumbnail(fullPath); err != nil {
		log.Warnf("Could not generate thumbnail for %s: %v", storedName, err)
	}

	img := &model.Image{
		Path:         storedName,
		Hash:         hex.EncodeToString(hasher.Sum(nil)),
		OriginalName: header.Filename,
		UploaderID:   uploaderID,
		FromIP:       fromIP,
	}
	if err := s.imageRepo.Create(ctx, img); err != nil {
		os.Remove(fullPath)
		return nil, err
	}
	return img, nil
}

// storedFilename joins a fresh uuid with a slugified base name so
// uploads never collide and paths stay URL-safe.
func storedFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	safe := slug.Make(base)
	if safe == "" {
		safe = "image"
	}
	return fmt.Sprintf("%s-%s%s", uuid.NewString(), safe, ext)
}

func writeThumbnail(fullPath string) error {
	in, err := os.Open(fullPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return err
	}

	thumb := resize.Thumbnail(300, 300, img, resize.Lanczos3)
	out, err := os.Create(fullPath + ".thumb.jpg")
	if err != nil {
		return err
	}
	defer out.Close()

	return jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
}
