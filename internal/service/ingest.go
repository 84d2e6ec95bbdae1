package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/storage"
	_ "golang.org/x/image/webp"
)

const defaultContentType = "application/octet-stream"

var errMissingSeparator = errors.New("inline payload has no ',' separator")

// InlinePayload is a decoded "<metadata-prefix>,<base64>" string.
type InlinePayload struct {
	// MediaType comes from a "data:<type>;base64" prefix; empty when absent.
	MediaType string
	Data      []byte
}

// StoredObject describes content written to the object store.
type StoredObject struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// IngestService uploads entry content and derives its public URL.
type IngestService struct {
	storage storage.ObjectStorage
	newKey  func() string
}

// IngestConfig holds configuration for the ingest service
type IngestConfig struct {
	KeySuffix string
	// KeyFunc overrides key generation; nil uses NewObjectKey with KeySuffix.
	KeyFunc func() string
}

// NewIngestService creates a new ingest service
func NewIngestService(objectStorage storage.ObjectStorage, cfg *IngestConfig) *IngestService {
	if cfg == nil {
		cfg = &IngestConfig{}
	}
	newKey := cfg.KeyFunc
	if newKey == nil {
		newKey = ObjectKeyFunc(cfg.KeySuffix)
	}
	return &IngestService{
		storage: objectStorage,
		newKey:  newKey,
	}
}

// DecodeInlinePayload splits encoded at its first comma and base64-decodes the remainder.
// The decoded bytes are not inspected.
// Returns:
//   - *InlinePayload: decoded bytes and the media type named by the prefix, if any.
//   - error: a decode-kind error for a missing separator or invalid base64.
func DecodeInlinePayload(encoded string) (*InlinePayload, error) {
	const op = "decode inline payload"

	idx := strings.IndexByte(encoded, ',')
	if idx < 0 {
		return nil, domain.DecodeError(op, errMissingSeparator)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded[idx+1:]))
	if err != nil {
		return nil, domain.DecodeError(op, err)
	}

	return &InlinePayload{
		MediaType: mediaTypeFromPrefix(encoded[:idx]),
		Data:      data,
	}, nil
}

// mediaTypeFromPrefix extracts "image/png" from "data:image/png;base64".
func mediaTypeFromPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if !strings.HasPrefix(prefix, "data:") {
		return ""
	}
	mediaType := strings.TrimPrefix(prefix, "data:")
	if idx := strings.IndexByte(mediaType, ';'); idx != -1 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// sniffContentType names the image format of data, falling back to octet-stream.
// Undecodable data is not an error.
func sniffContentType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return defaultContentType
	}
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return defaultContentType
	}
}

// Ingest decodes an inline payload, uploads it under a fresh key and returns
// the synthesized URL. Nothing is uploaded when decoding fails.
func (s *IngestService) Ingest(ctx context.Context, encoded string) (*StoredObject, error) {
	payload, err := DecodeInlinePayload(encoded)
	if err != nil {
		return nil, err
	}
	return s.IngestBytes(ctx, payload.Data, payload.MediaType)
}

// IngestBytes uploads raw content under a fresh key.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - data: content to store verbatim.
//   - contentType: stored content type; empty means sniff from data.
// Returns:
//   - *StoredObject: key, URL, content type and size of the upload.
//   - error: an upload-kind error when the object store rejects the write.
func (s *IngestService) IngestBytes(ctx context.Context, data []byte, contentType string) (*StoredObject, error) {
	if contentType == "" {
		contentType = sniffContentType(data)
	}

	obj := &StoredObject{
		Key:         s.newKey(),
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	start := time.Now()
	if err := s.storage.Upload(ctx, obj.Key, bytes.NewReader(data), obj.Size, contentType); err != nil {
		return nil, domain.UploadError(fmt.Sprintf("upload %s", obj.Key), err)
	}
	obj.URL = s.storage.GetURL(obj.Key)

	logger.With(logger.Fields{
		logger.FieldObjectKey:  obj.Key,
		logger.FieldSize:       obj.Size,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Uploaded entry content")

	return obj, nil
}

// Discard deletes an uploaded object whose entry row could not be written.
// Failures are logged and otherwise ignored.
func (s *IngestService) Discard(ctx context.Context, obj *StoredObject) {
	if obj == nil {
		return
	}
	if err := s.storage.Delete(ctx, obj.Key); err != nil {
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldObjectKey: obj.Key,
		}).WithError(err).Error("Failed to discard orphaned upload")
		return
	}
	logger.FromContext(ctx).WithField(logger.FieldObjectKey, obj.Key).Warn("Discarded upload after failed entry insert")
}
