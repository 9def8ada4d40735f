package controller

import (
	"errors"
	"io"
	"mime/multipart"

	"voice-coach-be/internal/dto"
	"voice-coach-be/internal/pkg/serverutils"
	"voice-coach-be/internal/service"
	"voice-coach-be/pkg/document"

	"github.com/gofiber/fiber/v2"
)

const previewLength = 500

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	UploadPDF(ctx *fiber.Ctx) error
	UploadDocument(ctx *fiber.Ctx) error
	GetContext(ctx *fiber.Ctx) error
	ClearContext(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload-pdf", c.UploadPDF)
	r.Post("/upload-document", c.UploadDocument)
	r.Get(document.ContextPath+":room", c.GetContext)
	r.Delete(document.ContextPath+":room", c.ClearContext)
}

func (c *documentController) UploadPDF(ctx *fiber.Ctx) error {
	return c.upload(ctx, "pdf_file")
}

func (c *documentController) UploadDocument(ctx *fiber.Ctx) error {
	return c.upload(ctx, "file")
}

func (c *documentController) upload(ctx *fiber.Ctx, field string) error {
	var req dto.UploadDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}
	if err := serverutils.ValidateStruct(req); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}
	if fileHeader.Size > document.MaxFileSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, document.ErrFileTooLarge.Error())
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		return err
	}

	entry, err := c.service.Upload(ctx.UserContext(), req.RoomId, fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return mapDocumentError(err)
	}

	text := entry.Document.Text
	if runes := []rune(text); len(runes) > previewLength {
		text = string(runes[:previewLength]) + "..."
	}

	return ctx.JSON(serverutils.SuccessResponse("Document uploaded", dto.UploadDocumentResponse{
		RoomId:   entry.SessionID,
		Metadata: entry.Document.Metadata,
		Preview:  text,
	}))
}

// GetContext serves the wire format read by document.HTTPSource.
func (c *documentController) GetContext(ctx *fiber.Ctx) error {
	room := ctx.Params("room")

	entry, ok := c.service.GetContext(ctx.UserContext(), room)
	if !ok {
		return ctx.JSON(document.ContextResponse{RoomID: room, HasContext: false})
	}

	return ctx.JSON(document.ContextResponse{
		RoomID:     room,
		HasContext: true,
		Context:    entry.Document.Text,
		Metadata:   entry.Document.Metadata,
	})
}

func (c *documentController) ClearContext(ctx *fiber.Ctx) error {
	room := ctx.Params("room")
	if !c.service.Clear(ctx.UserContext(), room) {
		return fiber.NewError(fiber.StatusNotFound, "No context for room")
	}
	return ctx.JSON(serverutils.SuccessResponse("Context cleared", fiber.Map{"room_id": room}))
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, document.MaxFileSize+1))
}

func mapDocumentError(err error) error {
	switch {
	case errors.Is(err, document.ErrFileTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, document.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, document.ErrEmptyDocument), errors.Is(err, document.ErrUnreadableDocument):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidSession):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
