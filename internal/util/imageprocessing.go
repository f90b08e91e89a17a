package util

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"
	"github.com/h2non/bimg"
)

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var previewGravities = map[string]bimg.Gravity{
	"center": bimg.GravityCentre,
	"top":    bimg.GravityNorth,
	"bottom": bimg.GravitySouth,
	"left":   bimg.GravityWest,
	"right":  bimg.GravityEast,
}

// ValidPreviewGravity reports whether gravity is accepted by RenderPreview.
func ValidPreviewGravity(gravity string) bool {
	_, ok := previewGravities[gravity]
	return ok
}

// ProcessPostImage validates an uploaded post image and re-encodes it as webp,
// shrinking it to fit MAX_IMAGE_SIDE while keeping its aspect ratio.
func ProcessPostImage(fileHeader *multipart.FileHeader, fieldName string) (model.ImageUpload, error) {
	data, err := readImage(fileHeader, fieldName)
	if err != nil {
		return model.ImageUpload{}, err
	}

	return ProcessImageBytes(data, fieldName)
}

func ProcessImageBytes(data []byte, fieldName string) (model.ImageUpload, error) {
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return model.ImageUpload{}, invalidImageError(fieldName)
	}

	options := bimg.Options{
		Quality: 90,
		Type:    bimg.WEBP,
	}
	if size.Width >= size.Height && size.Width > constant.MAX_IMAGE_SIDE {
		options.Width = constant.MAX_IMAGE_SIDE
	} else if size.Height > size.Width && size.Height > constant.MAX_IMAGE_SIDE {
		options.Height = constant.MAX_IMAGE_SIDE
	}

	output, err := image.Process(options)
	if err != nil {
		return model.ImageUpload{}, invalidImageError(fieldName)
	}

	return webpUpload(output), nil
}

// ProcessAvatarImage validates an uploaded avatar and crops it to a square.
func ProcessAvatarImage(fileHeader *multipart.FileHeader, fieldName string) (model.ImageUpload, error) {
	data, err := readImage(fileHeader, fieldName)
	if err != nil {
		return model.ImageUpload{}, err
	}

	output, err := ConvertToWebP(data, 75, constant.AVATAR_SIZE, constant.AVATAR_SIZE)
	if err != nil {
		return model.ImageUpload{}, invalidImageError(fieldName)
	}

	return webpUpload(output), nil
}

func ConvertToWebP(data []byte, quality int, maxW int, maxH int) ([]byte, error) {
	return bimg.NewImage(data).Process(bimg.Options{
		Width:   maxW,
		Height:  maxH,
		Quality: quality,
		Type:    bimg.WEBP,
		Crop:    true,
		Embed:   false,
		Force:   true,
	})
}

// RenderPreview crops the stored image to the requested box anchored at the
// requested gravity.
func RenderPreview(data []byte, options model.PreviewOptions) ([]byte, error) {
	return bimg.NewImage(data).Process(bimg.Options{
		Width:   options.Width,
		Height:  options.Height,
		Quality: options.Quality,
		Gravity: previewGravities[options.Gravity],
		Crop:    options.Width > 0 && options.Height > 0,
		Type:    bimg.WEBP,
	})
}

func readImage(fileHeader *multipart.FileHeader, fieldName string) ([]byte, error) {
	if fileHeader.Size > constant.MAX_FILE_SIZE {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Image size exceeded %dMB limit", constant.MAX_FILE_SIZE/(1024*1024)),
			Param:   fieldName,
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !AllowedImageTypes[contentType] {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Invalid file type: %s. allowed types: jpeg, jpg, png, gif, webp", contentType),
			Param:   fieldName,
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Invalid file extension: %s", ext),
			Param:   fieldName,
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func invalidImageError(fieldName string) error {
	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: "Failed to process image. File may be corrupted or not a valid image",
		Param:   fieldName,
	}
}

func webpUpload(data []byte) model.ImageUpload {
	return model.ImageUpload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "image/webp",
	}
}
