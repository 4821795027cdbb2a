package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/middleware"
	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextMemberKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func readUpload(header *multipart.FileHeader) (service.MediaUpload, error) {
	file, err := header.Open()
	if err != nil {
		return service.MediaUpload{}, err
	}
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(file)
	if err != nil {
		return service.MediaUpload{}, err
	}
	return service.MediaUpload{Filename: header.Filename, Data: data}, nil
}
