package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	storage "github.com/supabase-community/storage-go"

	"github.com/vnkhanh/pathfinder-backend/config"
)

var storageCfg struct {
	url    string
	key    string
	bucket string
}

// Thay thế được trong test để không gọi Supabase thật.
var (
	UploadImage = uploadImageToSupabase
	DeleteImage = deleteFileFromSupabase
)

func InitStorage(cfg *config.Config) {
	storageCfg.url = cfg.SupabaseURL
	storageCfg.key = cfg.SupabaseKey
	storageCfg.bucket = cfg.SupabaseBucket
}

func storageClient() (*storage.Client, error) {
	if storageCfg.url == "" || storageCfg.key == "" {
		return nil, errors.New("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
	}
	return storage.NewClient(storageCfg.url+"/storage/v1", storageCfg.key, nil), nil
}

// uploadImageToSupabase uploads an image to <bucket>/images/<fileID>.<ext>
// and returns its public URL.
func uploadImageToSupabase(fileHeader *multipart.FileHeader, fileID string) (string, error) {
	client, err := storageClient()
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectPath := fmt.Sprintf("images/%s%s", fileID, ext)
	contentType := fileHeader.Header.Get("Content-Type")
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := client.UploadFile(storageCfg.bucket, objectPath, &buf, options); err != nil {
		return "", errors.Wrap(err, "uploading image")
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", storageCfg.url, storageCfg.bucket, objectPath), nil
}

// ObjectFromPublicURL tách bucket và object path từ public URL của Supabase.
func ObjectFromPublicURL(publicURL string) (bucket, object string, err error) {
	const marker = "/storage/v1/object/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return "", "", errors.Errorf("không xác định được đường dẫn object trong URL: %s", publicURL)
	}

	rest := strings.TrimPrefix(publicURL[idx+len(marker):], "public/")
	if qIdx := strings.Index(rest, "?"); qIdx != -1 {
		rest = rest[:qIdx]
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("không parse được bucket/object từ URL: %s", publicURL)
	}
	object = parts[1]
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return parts[0], object, nil
}

func deleteFileFromSupabase(publicURL string) error {
	if publicURL == "" {
		return nil
	}
	client, err := storageClient()
	if err != nil {
		return err
	}
	bucket, object, err := ObjectFromPublicURL(publicURL)
	if err != nil {
		return err
	}
	if _, err := client.RemoveFile(bucket, []string{object}); err != nil {
		return errors.Wrap(err, "deleting image")
	}
	return nil
}
