package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"pfa/models"
	"pfa/pkg/config"
	"pfa/pkg/extract"
	"pfa/pkg/ocr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type receiptExtractor interface {
	Extract(ctx context.Context, up extract.Upload) (*extract.Response, error)
}

var receiptSvc receiptExtractor

// newReceiptService wires the configured engine behind a lazily built shared handle.
func newReceiptService(c config.Config, log zerolog.Logger) (*extract.Service, error) {
	opts := ocr.Options{
		Engine:   c.ReceiptEngine,
		URL:      c.DonutURL,
		ModelID:  c.DonutModelID,
		Token:    c.DonutToken,
		Timeout:  c.DonutTimeout,
		Language: c.TesseractLang,
	}
	if c.ReceiptEngine != "donut" && c.ReceiptEngine != "tesseract" {
		return nil, fmt.Errorf("unknown RECEIPT_ENGINE %q", c.ReceiptEngine)
	}
	model := ocr.Shared(func() (ocr.Model, error) {
		log.Info().Str("engine", opts.Engine).Msg("loading receipt model")
		return ocr.NewModel(opts, log)
	})
	raster := &ocr.Pdftoppm{
		Bin:      c.PdftoppmBin,
		DPI:      c.PDFRasterDPI,
		MaxPages: c.OCRMaxPages,
		Runner:   ocr.ExecRunner{Log: log},
	}
	return extract.New(model, raster, log,
		extract.WithEngine(c.ReceiptEngine),
		extract.WithMaxBytes(int64(c.MaxUploadMB)<<20),
	), nil
}

func extractReceiptHandler(c *gin.Context) {
	uid := currentUserID(c)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	maxBytes := int64(cfg.MaxUploadMB) << 20
	if maxBytes > 0 && fh.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large (max %dMB)", cfg.MaxUploadMB)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	up := extract.Upload{Filename: filepath.Base(fh.Filename), ContentType: fh.Header.Get("Content-Type"), Data: data}
	resp, err := receiptSvc.Extract(c.Request.Context(), up)

	var storePath string
	if len(data) > 0 {
		storePath = storeUpload(c, uid, up)
	}
	recordScan(c, extract.ScanRecord(uid, up, storePath, resp, err))

	if err != nil {
		writeExtractError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeExtractError(c *gin.Context, err error) {
	var in *extract.InputError
	var ext *extract.ExternalFailure
	switch {
	case errors.As(err, &in):
		c.JSON(http.StatusBadRequest, gin.H{"error": in.Message()})
	case errors.As(err, &ext):
		reqLogger(c).Error().Err(err).Msg("receipt model failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Receipt model failed: " + ext.Err.Error()})
	default:
		reqLogger(c).Error().Err(err).Msg("receipt extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
	}
}

// storeUpload keeps a copy of the upload under UPLOAD_BASE/<user>/ and
// returns its relative path, or "" when saving fails.
func storeUpload(c *gin.Context, userID uint, up extract.Upload) string {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if len(ext) > 8 {
		ext = ""
	}
	rel := filepath.Join(fmt.Sprint(userID), uuid.NewString()+ext)
	full := filepath.Join(cfg.UploadBase, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		reqLogger(c).Warn().Err(err).Msg("mkdir upload dir failed")
		return ""
	}
	if err := os.WriteFile(full, up.Data, 0o644); err != nil {
		reqLogger(c).Warn().Err(err).Msg("save upload failed")
		return ""
	}
	return filepath.ToSlash(rel)
}

// recordScan stores the scan row; failures are logged and otherwise ignored.
func recordScan(c *gin.Context, rec models.ReceiptScan) {
	if db == nil {
		return
	}
	if err := db.Create(&rec).Error; err != nil {
		reqLogger(c).Warn().Err(err).Str("file", rec.FileName).Msg("record receipt scan failed")
	}
}

func listScansHandler(c *gin.Context) {
	uid := currentUserID(c)
	var scans []models.ReceiptScan
	if err := db.Where("user_id = ?", uid).Order("id desc").Limit(100).Find(&scans).Error; err != nil {
		reqLogger(c).Error().Err(err).Msg("list scans failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, scans)
}
