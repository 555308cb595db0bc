package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const mediaFolder = "coursehub"

// MediaService uploads and deletes course media on Cloudinary
type MediaService struct {
	cld *cloudinary.Cloudinary
}

// NewMediaService builds a media service from the loaded configuration
func NewMediaService() (*MediaService, error) {
	cld, err := cloudinary.NewFromParams(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing cloudinary: %w", err)
	}
	return &MediaService{cld: cld}, nil
}

// Upload stores one file on Cloudinary and returns the hosted asset
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.MediaAsset, error) {
	// Cloudinary needs a seekable source; spool the upload to a temp file so
	// we can also probe video duration locally.
	tmpPath, err := spoolToTemp(file, header.Filename)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	resp, err := s.cld.Upload.Upload(ctx, tmpPath, uploader.UploadParams{
		Folder:         mediaFolder,
		ResourceType:   "auto",
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading media: %w", err)
	}

	asset := &models.MediaAsset{
		PublicID:     resp.PublicID,
		URL:          resp.SecureURL,
		ResourceType: resp.ResourceType,
		Bytes:        resp.Bytes,
		Format:       resp.Format,
	}

	if resp.ResourceType == "video" {
		if secs, err := ProbeDurationSeconds(tmpPath); err == nil {
			asset.DurationSeconds = secs
		} else {
			logger.Debug("Could not probe duration for %s: %v", header.Filename, err)
		}
	}

	logger.Info("Uploaded media %s (%s, %d bytes)", resp.PublicID, resp.ResourceType, resp.Bytes)
	return asset, nil
}

// Delete removes an asset from Cloudinary by its public id
func (s *MediaService) Delete(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "image"
	}
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("error deleting media %s: %w", publicID, err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("error deleting media %s: %s", publicID, resp.Result)
	}
	return nil
}

// ProbeDurationSeconds reads the media duration with ffprobe. Returns an
// error if ffprobe is not installed
func ProbeDurationSeconds(path string) (int, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return 0, fmt.Errorf("ffprobe not available: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("error parsing ffprobe output: %w", err)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration %q: %w", probe.Format.Duration, err)
	}
	return int(secs + 0.5), nil
}

func spoolToTemp(file multipart.File, name string) (string, error) {
	ext := filepath.Ext(name)
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error spooling upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error closing temp file: %w", err)
	}
	return tmp.Name(), nil
}
