package storage

import (
	"context"
	"time"
)

// FileKind задаёт префикс и допустимые типы загружаемого документа.
type FileKind string

const (
	FileKindCertificate FileKind = "certificates"
	FileKindCV          FileKind = "cv"
	FileKindChat        FileKind = "chat"
)

type FileStorage interface {
	UploadFile(ctx context.Context, kind FileKind, data []byte, filename string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error

	GetFile(ctx context.Context, fileURL string) ([]byte, error)

	GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error)
}
