package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	app "smart-spray/internal/application"
	"smart-spray/internal/domain/apperr"
	"smart-spray/internal/domain/entity"
)

// handleDetect принимает изображение листа и запускает конвейер решений
// POST /detect (multipart, поле image)
func (s *Server) handleDetect(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	image, err := readImage(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	out, err := s.spray.HandleDetection(ctx, entity.SourceUpload, image)
	if err != nil {
		writeDetectionError(c, out, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// handleCapture снимает кадр с локальной камеры
// GET /capture
func (s *Server) handleCapture(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	out, err := s.spray.HandleCapture(ctx)
	if err != nil {
		writeDetectionError(c, out, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// handleCommand отдаёт текущую команду контроллеру; чтение ничего не меняет
// GET /command
func (s *Server) handleCommand(c *gin.Context) {
	c.JSON(http.StatusOK, s.spray.Poll())
}

// handleOverride применяет ручную команду
// POST /override
func (s *Server) handleOverride(c *gin.Context) {
	var req app.OverrideRequest
	if err := json.NewDecoder(io.LimitReader(c.Request.Body, 64<<10)).Decode(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.KindValidation, "invalid override payload", err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	out, err := s.spray.HandleOverride(ctx, req)
	if err != nil {
		if out != nil {
			writeErrorWithCommand(c, err, out.Command)
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// handleLogs отдаёт журнал решений
// GET /logs?last=N
func (s *Server) handleLogs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	entries, err := s.spray.Logs(ctx, ParseLast(c.Query("last")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ParseLast разбирает параметр last; пустое, нечисловое или отрицательное значение означает весь журнал
func ParseLast(raw string) int {
	if raw == "" {
		return -1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func readImage(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.KindInvalidImage, "image is too large", err)
		}
		return nil, apperr.Wrap(apperr.KindInvalidImage, "no image uploaded", err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidImage, "failed to read image", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidImage, "failed to read image", err)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.KindInvalidImage, "no image uploaded")
	}
	return data, nil
}

func writeDetectionError(c *gin.Context, out *app.DetectionOutput, err error) {
	if out != nil {
		writeErrorWithCommand(c, err, out.Command)
		return
	}
	writeError(c, err)
}

func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(kind.HTTPStatus(), gin.H{"kind": kind, "error": err.Error()})
}

// writeErrorWithCommand ответ на сбой журнала: команда уже применена
func writeErrorWithCommand(c *gin.Context, err error, cmd entity.Command) {
	kind := apperr.KindOf(err)
	c.JSON(kind.HTTPStatus(), gin.H{"kind": kind, "error": err.Error(), "command": cmd})
}
