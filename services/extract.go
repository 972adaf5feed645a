package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/utils"
)

const MaxImportSize = 10 << 20

// ExtractText đọc nội dung văn bản từ file .pdf, .docx hoặc .txt.
func ExtractText(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxImportSize {
		return "", utils.NewValidationError("File is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportSize+1))
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}

	var text string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		text, err = ExtractTextFromPDF(data)
	case ".docx":
		text, err = ExtractTextFromDOCX(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return "", utils.NewValidationError("Unsupported file type, expected .pdf, .docx or .txt")
	}
	if err != nil {
		return "", utils.NewValidationError("Could not read file: " + err.Error())
	}
	return strings.TrimSpace(text), nil
}

func ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "không thể tạo reader PDF")
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExtractTextFromDOCX lấy text trong các thẻ <w:t> của word/document.xml.
func ExtractTextFromDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "t" {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
	}
	return sb.String(), nil
}
